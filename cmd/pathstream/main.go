// Headless simulation server: runs the path service over a grid world with
// wandering agents and streams planner events to WebSocket subscribers as
// msgpack binary frames.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/kkingfung/Laboratory-sub014/config"
	"github.com/kkingfung/Laboratory-sub014/navigation"
	"github.com/kkingfung/Laboratory-sub014/status"
	"github.com/kkingfung/Laboratory-sub014/vmath"
	"github.com/kkingfung/Laboratory-sub014/walkgrid"
)

const (
	worldCols  = 80
	worldRows  = 80
	agentSpeed = 6.0
	tickRate   = 20 // simulation ticks per second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type wanderer struct {
	pos    vmath.Vec3F
	dest   vmath.Vec3F
	status navigation.AgentStatus

	path []vmath.Vec3F
	leg  int
}

func (a *wanderer) Position() vmath.Vec3F          { return a.pos }
func (a *wanderer) Destination() vmath.Vec3F       { return a.dest }
func (a *wanderer) Status() navigation.AgentStatus { return a.status }

func (a *wanderer) OnPathReady(path []vmath.Vec3F, ok bool) {
	if !ok {
		a.status = navigation.StatusFailed
		return
	}
	a.path = append(a.path[:0], path...)
	a.leg = 0
	a.status = navigation.StatusFollowing
}

func (a *wanderer) advance(dt float64) {
	if a.status != navigation.StatusFollowing {
		return
	}
	remaining := agentSpeed * dt
	for remaining > 0 && a.leg < len(a.path) {
		target := a.path[a.leg]
		d := vmath.V3FDist(a.pos, target)
		if d <= remaining {
			a.pos = target
			a.leg++
			remaining -= d
			continue
		}
		dir := vmath.V3FScale(vmath.V3FSub(target, a.pos), 1/d)
		a.pos = vmath.V3FAdd(a.pos, vmath.V3FScale(dir, remaining))
		remaining = 0
	}
	if a.leg >= len(a.path) {
		a.status = navigation.StatusIdle
	}
}

type sim struct {
	world  *walkgrid.Grid
	svc    *navigation.PathService
	reg    *status.Registry
	hub    *Hub
	agents []*wanderer
	rng    *rand.Rand
}

func newSim(cfg config.Config, hub *Hub, agentCount int, seed int64) *sim {
	world := walkgrid.New(worldCols, worldRows, 1)
	world.BlockRect(15, 10, 18, 60)
	world.BlockRect(35, 20, 60, 23)
	world.BlockRect(50, 40, 53, 75)

	reg := status.NewRegistry()
	s := &sim{
		world: world,
		svc:   navigation.NewPathService(cfg, world, nil, &streamObserver{hub: hub}, reg),
		reg:   reg,
		hub:   hub,
		rng:   rand.New(rand.NewSource(seed)),
	}
	for i := 0; i < agentCount; i++ {
		a := &wanderer{pos: s.randomPoint(), status: navigation.StatusIdle}
		a.dest = s.randomPoint()
		s.agents = append(s.agents, a)
		s.svc.RegisterAgent(a)
	}
	return s
}

func (s *sim) randomPoint() vmath.Vec3F {
	for {
		p := vmath.Vec3F{
			X: s.rng.Float64() * worldCols,
			Z: s.rng.Float64() * worldRows,
		}
		if _, err := s.world.SampleNavigable(p, 0.5); err == nil {
			return p
		}
	}
}

// run drives the simulation at the fixed tick rate and publishes a stats
// frame once per second
func (s *sim) run() {
	ticker := time.NewTicker(time.Second / tickRate)
	defer ticker.Stop()

	statsEvery := tickRate
	tickNum := 0

	for range ticker.C {
		dt := 1.0 / tickRate
		s.svc.Tick(dt)
		for _, a := range s.agents {
			a.advance(dt)
			if a.status == navigation.StatusIdle && vmath.V3FDistXZ(a.pos, a.dest) < 0.5 {
				a.dest = s.randomPoint()
			}
		}

		tickNum++
		if tickNum%statsEvery == 0 {
			frame, err := msgpack.Marshal(statsEvent{
				T:        "stats",
				Clients:  s.hub.ClientCount(),
				Counters: s.reg.SnapshotInts(),
			})
			if err != nil {
				log.Printf("marshal error: %v", err)
				continue
			}
			s.hub.Broadcast(frame)
		}
	}
}

func main() {
	addr := flag.String("addr", ":8090", "listen address")
	configPath := flag.String("config", "", "path to YAML tuning file")
	agentCount := flag.Int("agents", 50, "number of wandering agents")
	seed := flag.Int64("seed", time.Now().UnixNano(), "world random seed")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	hub := NewHub()
	go hub.Run()

	s := newSim(cfg, hub, *agentCount, *seed)
	go s.run()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "ok clients=%d\n", hub.ClientCount())
	})
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		if !hub.CanAccept() {
			http.Error(w, "too many connections", http.StatusServiceUnavailable)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("upgrade error: %v", err)
			return
		}
		hub.TrackConnect()

		client := NewClient(hub, conn)
		hub.register <- client

		go client.WritePump()
		go client.ReadPump()
	})

	log.Printf("pathstream listening on %s", *addr)
	if err := http.ListenAndServe(*addr, mux); err != nil {
		log.Fatal(err)
	}
}
