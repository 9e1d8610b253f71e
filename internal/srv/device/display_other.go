//go:build !amd64 || !cgo

package device

import (
	"github.com/sirupsen/logrus"
)

type simulation struct{}

func (d *Display) startSimulation() {
	logrus.Warnf("Simulation window is only available on amd64, frames are kept in memory")
}

func (d *Display) invalidateSimulationWindow() {
}

func (d *Display) closeSimulationWindow() {
}
