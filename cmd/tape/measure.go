package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spf13/cobra"

	"github.com/gekko3d/tape"
	"github.com/gekko3d/tape/spatial/sim"
)

var (
	points     []string
	floorY     float64
	wallZ      float64
	restartEnd bool
)

var measureCmd = &cobra.Command{
	Use:   "measure",
	Short: "Place points in a simulated room and print the measurements",
	Long: `Place points in a simulated room with a floor and an optional wall, and print
the label of every completed segment. Points are given as x,y,z in meters and
are connected in pairs: the 1st with the 2nd, the 3rd with the 4th, and so on.`,
	Example: `  tape measure --point 0,0,0 --point 1,0,0
  tape measure --wall-z -1 --point 0,0.5,-1 --point 0,1.2,-1`,
	Args: cobra.NoArgs,
	RunE: runMeasure,
}

func init() {
	rootCmd.AddCommand(measureCmd)

	measureCmd.Flags().StringArrayVarP(&points, "point", "p", nil, "point to place as x,y,z (repeatable)")
	measureCmd.Flags().Float64Var(&floorY, "floor-y", 0, "height of the floor")
	measureCmd.Flags().Float64Var(&wallZ, "wall-z", 0, "depth of a wall facing the viewer")
	measureCmd.Flags().BoolVar(&restartEnd, "restart", false, "restart the session after measuring")
	_ = measureCmd.MarkFlagRequired("point")
}

func runMeasure(cmd *cobra.Command, args []string) error {
	targets := make([]mgl32.Vec3, 0, len(points))
	for _, s := range points {
		p, err := parseVec3(s)
		if err != nil {
			return err
		}
		targets = append(targets, p)
	}

	cfg, err := tape.LoadConfig()
	if err != nil {
		return err
	}
	log := tape.NewDefaultLogger(cfg.LogPrefix, cfg.Debug)

	room := newRoom(float32(floorY))
	if cmd.Flags().Changed("wall-z") {
		room.addWall(float32(wallZ))
	}

	permission := tape.NewCameraPermission(tape.StaticAuthority{Status: tape.AuthorizationAuthorized})
	if _, err := permission.Configure(cmd.Context()); err != nil {
		return err
	}
	engine, err := tape.NewEngine(tape.EngineOptions{
		Config:     cfg,
		Session:    room.session,
		Scene:      room.scene,
		Permission: permission,
		Logger:     log,
	})
	if err != nil {
		return err
	}
	room.session.SetDelegate(engine)

	app := tape.NewAppBuilder().
		UseModule(tape.LoggingModule{Logger: log}).
		UseModule(tape.TimeModule{}).
		UseModule(tape.MeasurementModule{Engine: engine}).
		Build()
	defer app.Close()

	actions, _ := tape.Resource[tape.Actions](app)
	engine.ResetTracking()
	room.detectSurfaces()

	for _, target := range targets {
		room.aimAt(target)
		app.Tick()
		engine.Settle()
		if err := actions.Trigger(tape.ActionAddPoint); err != nil {
			return err
		}
		app.Tick()
		engine.Settle()
	}
	// One more frame lets the live preview catch up with the last placement.
	app.Tick()
	engine.Settle()

	report(cmd.OutOrStdout(), engine)

	if restartEnd {
		if err := actions.Trigger(tape.ActionRestart); err != nil {
			return err
		}
		app.Tick()
		engine.Settle()
		fmt.Fprintf(cmd.OutOrStdout(), "\nrestarted: %d points left, next restart available: %v\n",
			len(engine.Registry().Points()), engine.IsRestartAvailable())
	}
	return nil
}

func report(out io.Writer, engine *tape.Engine) {
	fmt.Fprintln(out, "Points")
	fmt.Fprintln(out, "======")
	for _, p := range engine.Registry().Points() {
		pos := p.WorldPosition()
		state := "placed"
		if !p.IsCommitted() {
			state = "not placed"
		}
		fmt.Fprintf(out, "%-12s (%7.3f, %7.3f, %7.3f)  %s\n", p.Name(), pos.X(), pos.Y(), pos.Z(), state)
	}

	fmt.Fprintln(out, "\nMeasurements")
	fmt.Fprintln(out, "============")
	labels := engine.Registry().Labels()
	if len(labels) == 0 {
		fmt.Fprintln(out, "(none)")
	}
	for i, l := range labels {
		fmt.Fprintf(out, "%d. %s at (%.3f, %.3f, %.3f)\n", i+1, l.Text, l.Position.X(), l.Position.Y(), l.Position.Z())
	}
}

func parseVec3(s string) (mgl32.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return mgl32.Vec3{}, fmt.Errorf("point %q: want x,y,z", s)
	}
	var v mgl32.Vec3
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
		if err != nil {
			return mgl32.Vec3{}, fmt.Errorf("point %q: %w", s, err)
		}
		v[i] = float32(f)
	}
	return v, nil
}

// room is a simulated session with a floor and optionally walls.
type room struct {
	session *sim.Session
	scene   *sim.Scene
	planes  []sim.Plane
}

func newRoom(floorY float32) *room {
	session := sim.NewSession()
	return &room{
		session: session,
		scene:   sim.NewScene(session),
		planes:  []sim.Plane{sim.HorizontalPlane(floorY)},
	}
}

// addWall adds a wall at depth z facing the viewer.
func (r *room) addWall(z float32) {
	r.planes = append(r.planes, sim.VerticalPlane(mgl32.Vec3{0, 0, z}, mgl32.Vec3{0, 0, 1}))
}

// detectSurfaces reports every plane of the room to the session.
func (r *room) detectSurfaces() {
	for _, p := range r.planes {
		r.session.AddPlane(p)
	}
}

// aimAt holds the camera half a meter back and a meter above target.
func (r *room) aimAt(target mgl32.Vec3) {
	r.session.SetCamera(sim.LookAt(target.Add(mgl32.Vec3{0, 1, 0.5}), target))
}
