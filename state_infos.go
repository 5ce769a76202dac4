package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"saturn/hw"
	"saturn/hw/hwdefs"
	"saturn/hw/sched"
	"saturn/hw/snapshot"
)

func stateInfosMain(w io.Writer, args StateInfos) error {
	buf, err := os.ReadFile(args.Path)
	if err != nil {
		return err
	}
	var st snapshot.System
	if err := st.UnmarshalBinary(buf); err != nil {
		return err
	}
	if args.JSON {
		return st.WriteJSON(w)
	}
	return printStateInfos(w, &st)
}

func printStateInfos(w io.Writer, st *snapshot.System) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "version:\t%d\n", st.Version)
	fmt.Fprintf(tw, "cycle:\t%d\n", st.Sched.Cycle)
	fmt.Fprintf(tw, "video:\t%s frame %d line %d\n",
		hwdefs.VideoStandard(st.Video.Standard), st.Video.Frame, st.Video.Line)
	fmt.Fprintf(tw, "cartridge:\t%s\n", hw.CartKind(st.Cart.Kind))
	fmt.Fprintf(tw, "interrupts:\tpending %s, masked %s\n",
		hwdefs.IntMask(st.SCU.IST), hwdefs.IntMask(st.SCU.IMS))

	fmt.Fprintln(tw, "\nevents:")
	for _, ev := range st.Sched.Events {
		fmt.Fprintf(tw, "  %s\t+%d\n", sched.EventID(ev.ID), ev.Target-min(ev.Target, st.Sched.Cycle))
	}

	fmt.Fprintln(tw, "\ndma:")
	for level, ch := range st.DMA.Channels {
		status := "idle"
		switch {
		case ch.Active:
			status = fmt.Sprintf("active, %d bytes left", ch.CurrXferCount)
		case ch.Triggered:
			status = "triggered"
		case !ch.Enabled:
			status = "disabled"
		}
		fmt.Fprintf(tw, "  level %d\t%s\ttrigger %s\tsrc %07x\tdst %07x\t%s\n",
			level, status, hw.DMATrigger(ch.Trigger), ch.SrcAddr, ch.DstAddr, dmaMode(&ch))
	}
	return tw.Flush()
}

func dmaMode(ch *snapshot.DMAChannel) string {
	if ch.Indirect {
		return "indirect"
	}
	return fmt.Sprintf("direct, %d bytes", ch.XferCount)
}
