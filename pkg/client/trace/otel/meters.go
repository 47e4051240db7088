package otel

import otelMetric "go.opentelemetry.io/otel/metric"

const (
	meterPrefix  = "iexkit.go."
	clientPrefix = meterPrefix + "client."
	httpPrefix   = meterPrefix + "http."
)

type allMeters struct {
	client clientMeters
	http   httpMeters
	parse  parseMeters
}

type clientMeters struct {
	inFlight otelMetric.Int64UpDownCounter
	duration otelMetric.Float64Histogram
}

type httpMeters struct {
	inFlight otelMetric.Int64UpDownCounter
	duration otelMetric.Float64Histogram
}

type parseMeters struct {
	inFlight otelMetric.Int64UpDownCounter
	duration otelMetric.Float64Histogram
}

func newMeters(meter otelMetric.Meter) *allMeters {
	return &allMeters{
		client: clientMeters{
			inFlight: upDownCounter(meter, clientPrefix+"request.in_flight", "IEX client: in flight requests."),
			duration: histogram(meter, clientPrefix+"request.duration", "IEX client: requests duration, including redirects and parsing.", "ms"),
		},
		http: httpMeters{
			inFlight: upDownCounter(meter, httpPrefix+"request.in_flight", "HTTP request: in flight requests."),
			duration: histogram(meter, httpPrefix+"request.duration", "HTTP request: response received duration (without parsing).", "ms"),
		},
		parse: parseMeters{
			inFlight: upDownCounter(meter, clientPrefix+"request.parse.in_flight", "IEX client: in flight response parsing."),
			duration: histogram(meter, clientPrefix+"request.parse.duration", "IEX client: response parse duration.", "ms"),
		},
	}
}

func upDownCounter(meter otelMetric.Meter, name, desc string) otelMetric.Int64UpDownCounter {
	return mustInstrument(meter.Int64UpDownCounter(name, otelMetric.WithDescription(desc)))
}

func histogram(meter otelMetric.Meter, name, desc string, unit string) otelMetric.Float64Histogram {
	return mustInstrument(meter.Float64Histogram(name, otelMetric.WithDescription(desc), otelMetric.WithUnit(unit)))
}

func mustInstrument[T any](instrument T, err error) T {
	if err != nil {
		panic(err)
	}
	return instrument
}
