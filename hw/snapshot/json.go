package snapshot

import (
	"io"

	"github.com/go-faster/jx"
)

// WriteJSON writes a human-readable summary of the state to w. Memory
// contents are summarized by their size.
func (s *System) WriteJSON(w io.Writer) error {
	var e jx.Encoder
	e.SetIdent(2)
	e.Obj(func(e *jx.Encoder) {
		e.Field("version", func(e *jx.Encoder) { e.UInt32(s.Version) })
		e.Field("scheduler", s.Sched.encodeJSON)
		e.Field("scu", s.SCU.encodeJSON)
		e.Field("dma", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for i := range s.DMA.Channels {
					s.DMA.Channels[i].encodeJSON(e)
				}
			})
		})
		e.Field("video", s.Video.encodeJSON)
		e.Field("wram_l_size", func(e *jx.Encoder) { e.Int(len(s.WRAML)) })
		e.Field("wram_h_size", func(e *jx.Encoder) { e.Int(len(s.WRAMH)) })
		e.Field("cartridge", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("kind", func(e *jx.Encoder) { e.Int(int(s.Cart.Kind)) })
				e.Field("ram_size", func(e *jx.Encoder) { e.Int(len(s.Cart.RAM)) })
			})
		})
	})
	_, err := w.Write(append(e.Bytes(), '\n'))
	return err
}

func (s *Scheduler) encodeJSON(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("cycle", func(e *jx.Encoder) { e.UInt64(s.Cycle) })
		e.Field("events", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, ev := range s.Events {
					e.Obj(func(e *jx.Encoder) {
						e.Field("id", func(e *jx.Encoder) { e.Int(int(ev.ID)) })
						e.Field("target", func(e *jx.Encoder) { e.UInt64(ev.Target) })
					})
				}
			})
		})
	})
}

func (s *SCU) encodeJSON(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) {
		for _, f := range []struct {
			name string
			val  uint32
		}{
			{"ims", s.IMS},
			{"ist", s.IST},
			{"aiack", s.AIACK},
			{"t0c", s.T0C},
			{"t1s", s.T1S},
			{"t1md", s.T1MD},
			{"timer0", s.Timer0},
		} {
			e.Field(f.name, func(e *jx.Encoder) { e.UInt32(f.val) })
		}
	})
}

func (ch *DMAChannel) encodeJSON(e *jx.Encoder) {
	u32 := func(name string, v uint32) {
		e.Field(name, func(e *jx.Encoder) { e.UInt32(v) })
	}
	flag := func(name string, v bool) {
		e.Field(name, func(e *jx.Encoder) { e.Bool(v) })
	}
	e.ObjStart()
	u32("src", ch.SrcAddr)
	u32("dst", ch.DstAddr)
	u32("count", ch.XferCount)
	u32("src_inc", ch.SrcAddrInc)
	u32("dst_inc", ch.DstAddrInc)
	flag("update_src", ch.UpdateSrcAddr)
	flag("update_dst", ch.UpdateDstAddr)
	flag("enabled", ch.Enabled)
	flag("indirect", ch.Indirect)
	u32("trigger", uint32(ch.Trigger))
	flag("triggered", ch.Triggered)
	flag("active", ch.Active)
	if ch.Active {
		u32("curr_src", ch.CurrSrcAddr)
		u32("curr_dst", ch.CurrDstAddr)
		u32("curr_count", ch.CurrXferCount)
		u32("curr_table", ch.CurrIndirectSrc)
		flag("end_indirect", ch.EndIndirect)
	}
	e.ObjEnd()
}

func (s *Video) encodeJSON(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("standard", func(e *jx.Encoder) { e.Int(int(s.Standard)) })
		e.Field("line", func(e *jx.Encoder) { e.UInt32(s.Line) })
		e.Field("phase", func(e *jx.Encoder) { e.Int(int(s.Phase)) })
		e.Field("frame", func(e *jx.Encoder) { e.UInt64(s.Frame) })
	})
}
