// Package gpio wraps pin-level access to the Raspberry Pi's GPIO lines.
// The real implementation memory-maps the GPIO registers via go-rpio; build
// with the "nogpio" tag to get a simulated driver for development machines.
package gpio

// Driver is the minimal pin-level surface the rest of WebLamp needs.
// Pins are addressed by their BCM numbers.
type Driver interface {
	// Output configures the pin as an output.
	Output(pin int)
	// Input configures the pin as an input.
	Input(pin int)
	// Read returns true if the pin's logic level is high.
	Read(pin int) (bool, error)
	// Write drives the pin high or low.
	Write(pin int, high bool) error
	// Toggle inverts the pin's current level.
	Toggle(pin int) error
	// Close releases the underlying GPIO resources.
	Close() error
}
