//go:build nogpio

package gpio

import (
	"github.com/rs/zerolog/log"
)

// Simulated driver for machines without GPIO hardware. Levels live in a
// plain map; every operation is logged so you can watch the pins flip.
type simulatedDriver struct {
	levels map[int]bool
}

func New() (Driver, error) {
	log.Debug().Msg("GPIO will be simulated")
	return &simulatedDriver{
		levels: make(map[int]bool),
	}, nil
}

func (d *simulatedDriver) Output(pin int) {
	log.Debug().Int("pin", pin).Msg("Simulated GPIO set to output")
}

func (d *simulatedDriver) Input(pin int) {
	log.Debug().Int("pin", pin).Msg("Simulated GPIO set to input")
}

func (d *simulatedDriver) Read(pin int) (bool, error) {
	return d.levels[pin], nil
}

func (d *simulatedDriver) Write(pin int, high bool) error {
	d.levels[pin] = high
	log.Debug().Int("pin", pin).Bool("high", high).Msg("Simulated GPIO write")
	return nil
}

func (d *simulatedDriver) Toggle(pin int) error {
	d.levels[pin] = !d.levels[pin]
	log.Debug().Int("pin", pin).Bool("high", d.levels[pin]).Msg("Simulated GPIO toggle")
	return nil
}

func (d *simulatedDriver) Close() error {
	log.Debug().Msg("Simulated GPIO closing")
	return nil
}
