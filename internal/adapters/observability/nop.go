package observability

import "streamtiff/internal/ports"

// Nop discards all logs and metrics. It is the serializer's default so
// library users pay nothing unless they opt in.
type Nop struct{}

func (Nop) LogInfo(string, ...ports.Field)         {}
func (Nop) LogWarn(string, ...ports.Field)         {}
func (Nop) LogError(string, error, ...ports.Field) {}
func (Nop) IncCounter(string, float64)             {}
func (Nop) SetGauge(string, float64)               {}
func (Nop) ObserveLatency(string, float64)         {}
func (Nop) RecordSkippedField(string, string, int) {}

var _ ports.Observability = Nop{}
