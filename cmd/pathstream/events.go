package main

import (
	"log"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/kkingfung/Laboratory-sub014/navigation"
	"github.com/kkingfung/Laboratory-sub014/vmath"
)

// Wire frames are msgpack maps with a "t" discriminator:
// "path" per delivered result, "field" per generated flow field,
// "stats" once per second

type pathEvent struct {
	T         string       `msgpack:"t"`
	ID        string       `msgpack:"id"`
	Mode      string       `msgpack:"mode"`
	OK        bool         `msgpack:"ok"`
	Start     [2]float64   `msgpack:"start"`
	Dest      [2]float64   `msgpack:"dest"`
	Waypoints [][2]float64 `msgpack:"waypoints"`
}

type fieldEvent struct {
	T        string     `msgpack:"t"`
	Dest     [2]float64 `msgpack:"dest"`
	Radius   float64    `msgpack:"radius"`
	Dim      int        `msgpack:"dim"`
	CellSize float64    `msgpack:"cell_size"`
}

type statsEvent struct {
	T        string           `msgpack:"t"`
	Clients  int              `msgpack:"clients"`
	Counters map[string]int64 `msgpack:"counters"`
}

func xz(p vmath.Vec3F) [2]float64 {
	return [2]float64{p.X, p.Z}
}

// streamObserver converts planner notifications into broadcast frames.
// Hooks run on the scheduling goroutine and must not retain their
// arguments, so waypoints are copied into the frame before encoding
type streamObserver struct {
	hub *Hub
}

func (o *streamObserver) PathComputed(req *navigation.PathRequest, path []vmath.Vec3F, ok bool) {
	ev := pathEvent{
		T:     "path",
		ID:    req.ID,
		Mode:  req.Mode.String(),
		OK:    ok,
		Start: xz(req.Start),
		Dest:  xz(req.Destination),
	}
	if len(path) > 0 {
		ev.Waypoints = make([][2]float64, len(path))
		for i, wp := range path {
			ev.Waypoints[i] = xz(wp)
		}
	}
	o.emit(ev)
}

func (o *streamObserver) FieldGenerated(field *navigation.FlowField) {
	o.emit(fieldEvent{
		T:        "field",
		Dest:     xz(field.Destination),
		Radius:   field.Radius,
		Dim:      field.Dim,
		CellSize: field.CellSize,
	})
}

func (o *streamObserver) emit(ev any) {
	frame, err := msgpack.Marshal(ev)
	if err != nil {
		log.Printf("marshal error: %v", err)
		return
	}
	o.hub.Broadcast(frame)
}
