/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"log/slog"

	lever "github.com/allbin/go-lever"
	"github.com/allbin/go-lever/device"
	"github.com/allbin/go-lever/internal/config"
)

// leverRig is a running lever.System together with the transport it owns.
type leverRig struct {
	sys     *lever.System
	handles []lever.Handle
	sim     *device.Simulator
	log     *slog.Logger
}

// startRig opens a transport for ports and starts one lever per port. With
// simulation enabled every port name becomes a simulated lever.
func startRig(cfg *config.Config, log *slog.Logger, ports []string) (*leverRig, error) {
	rig := &leverRig{log: log}

	var tr lever.Transport
	if cfg.Simulate {
		sim, err := device.NewSimulator(log, ports...)
		if err != nil {
			return nil, fmt.Errorf("start simulator: %w", err)
		}
		rig.sim = sim
		tr = sim
	} else {
		tr = device.NewTransport(cfg.Serial.BaudRate, cfg.Serial.Timeout)
	}

	sys, err := lever.New(
		lever.WithTransport(tr),
		lever.WithPollInterval(cfg.PollInterval),
		lever.WithTelemetryCapacity(cfg.TelemetryCapacity),
		lever.WithLogger(log),
	)
	if err != nil {
		rig.closeSim()
		return nil, err
	}
	handles, err := sys.Initialize(len(ports))
	if err != nil {
		rig.closeSim()
		return nil, err
	}

	rig.sys, rig.handles = sys, handles
	return rig, nil
}

// stop closes every lever, stops the worker and the simulator.
func (r *leverRig) stop() {
	for _, h := range r.handles {
		r.sys.CloseConnection(h)
	}
	r.sys.Update()
	r.sys.Terminate()
	r.closeSim()
}

func (r *leverRig) closeSim() {
	if r.sim == nil {
		return
	}
	if err := r.sim.Close(); err != nil {
		r.log.Debug("stop simulator", slog.Any("error", err))
	}
}
