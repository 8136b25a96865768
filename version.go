package otelkafkax

// Version is the current release of the otelkafkax instrumentation.
func Version() string {
	return "0.3.0"
}
