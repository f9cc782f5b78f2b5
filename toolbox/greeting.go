package toolbox

// Fallback texts used when no name is given.
const (
	DefaultGreeting = "Ey SinNombre!"
	DefaultFarewell = "Adios SinNombre!"
)

// SayHello greets name, or returns DefaultGreeting when name is nil or empty.
func SayHello(name *string) string {
	if name == nil || *name == "" {
		return DefaultGreeting
	}
	return "Hello, " + *name + "!"
}

// SayGoodbye bids farewell to name, or returns DefaultFarewell when name is
// nil or empty.
func SayGoodbye(name *string) string {
	if name == nil || *name == "" {
		return DefaultFarewell
	}
	return "Goodbye, " + *name + "!"
}
