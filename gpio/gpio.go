//go:build !nogpio

package gpio

import "github.com/stianeikeland/go-rpio/v4"

type rpioDriver struct{}

// New memory-maps the GPIO registers. Requires root or membership in the
// gpio group on the Pi.
func New() (Driver, error) {
	if err := rpio.Open(); err != nil {
		return nil, err
	}
	return &rpioDriver{}, nil
}

func (d *rpioDriver) Output(pin int) {
	rpio.Pin(pin).Output()
}

func (d *rpioDriver) Input(pin int) {
	rpio.Pin(pin).Input()
}

func (d *rpioDriver) Read(pin int) (bool, error) {
	return rpio.Pin(pin).Read() == rpio.High, nil
}

func (d *rpioDriver) Write(pin int, high bool) error {
	p := rpio.Pin(pin)
	if high {
		p.High()
	} else {
		p.Low()
	}
	return nil
}

func (d *rpioDriver) Toggle(pin int) error {
	rpio.Pin(pin).Toggle()
	return nil
}

func (d *rpioDriver) Close() error {
	return rpio.Close()
}
