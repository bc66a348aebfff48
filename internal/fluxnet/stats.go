package fluxnet

import "github.com/RuyaSavascisi/Flux-Networks/internal/protocol"

// Statistics are server-maintained aggregates for one network. They are
// serialized to clients in the statistics payload kind and never accepted
// back from the wire.
type Statistics struct {
	Connections  int32
	EnergyInput  int64
	EnergyOutput int64
	TotalBuffer  int64
	TickMicros   int64
}

func (s *Statistics) write(buf *protocol.Buffer) {
	buf.WriteVarInt(s.Connections)
	buf.WriteI64(s.EnergyInput)
	buf.WriteI64(s.EnergyOutput)
	buf.WriteI64(s.TotalBuffer)
	buf.WriteI64(s.TickMicros)
}

func (s *Statistics) read(buf *protocol.Buffer) error {
	conns, err := buf.VarInt()
	if err != nil {
		return err
	}
	in, err := buf.I64()
	if err != nil {
		return err
	}
	out, err := buf.I64()
	if err != nil {
		return err
	}
	total, err := buf.I64()
	if err != nil {
		return err
	}
	tick, err := buf.I64()
	if err != nil {
		return err
	}
	s.Connections = conns
	s.EnergyInput = in
	s.EnergyOutput = out
	s.TotalBuffer = total
	s.TickMicros = tick
	return nil
}
