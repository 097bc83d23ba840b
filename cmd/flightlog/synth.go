package main

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"uav-logchat/flightdesk/internal/dataflash"
)

const (
	sampleInterval = 200 * time.Millisecond
	bootOffset     = time.Second
	minDuration    = 10 * time.Second

	cruiseAltitude = 100.0
	fullVoltage    = 12.6
	voltageDrop    = 1.5

	// ArduCopter mode numbers
	modeStabilize = 0
	modeLoiter    = 5
	modeRTL       = 6
	modeLand      = 9

	eventArmed    = 10
	eventDisarmed = 11

	subsysGPS      = 11
	ecodeGlitch    = 2
	severityFailed = 2

	homeLat = -35.3632621
	homeLng = 149.1652374
)

var synthFormats = []struct {
	name    string
	format  string
	columns []string
}{
	{"MODE", "QMB", []string{"TimeUS", "Mode", "ModeNum"}},
	{"EV", "QB", []string{"TimeUS", "Id"}},
	{"GPS", "QBBLLf", []string{"TimeUS", "Status", "NSats", "Lat", "Lng", "Alt"}},
	{"BAT", "Qcc", []string{"TimeUS", "Volt", "Curr"}},
	{"ERR", "QBBB", []string{"TimeUS", "Subsys", "ECode", "Severity"}},
}

func synthCmd() *cobra.Command {
	var duration time.Duration

	cmd := &cobra.Command{
		Use:   "synth <out.bin>",
		Short: "Write a synthetic flight log",
		Long: `Write a DataFlash log of a simple copter flight: arm, climb, loiter,
a short GPS dropout with an error, return and land.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := synthFile(args[0], duration)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s to %s\n", humanize.Bytes(uint64(n)), args[0])
			return nil
		},
	}

	cmd.Flags().DurationVarP(&duration, "duration", "d", time.Minute, "Flight duration")

	return cmd
}

func synthFile(path string, duration time.Duration) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	cw := &countingWriter{w: bw}
	if err := writeSynthetic(cw, duration); err != nil {
		return 0, err
	}
	if err := bw.Flush(); err != nil {
		return 0, err
	}
	return cw.n, f.Close()
}

// writeSynthetic writes a flight of the given duration sampled every
// sampleInterval. GPS drops below a 3-D fix between 40% and 45% of the flight.
func writeSynthetic(w io.Writer, duration time.Duration) error {
	if duration < minDuration {
		return fmt.Errorf("duration must be at least %s", minDuration)
	}

	fw := dataflash.NewWriter(w)
	for _, def := range synthFormats {
		if err := fw.Define(def.name, def.format, def.columns...); err != nil {
			return err
		}
	}

	steps := int(duration / sampleInterval)
	dropoutFrom, dropoutTo := steps*40/100, steps*45/100
	modes := map[int]int{
		0:              modeStabilize,
		steps / 10:     modeLoiter,
		steps * 9 / 10: modeRTL,
		steps:          modeLand,
	}

	for i := 0; i <= steps; i++ {
		t := uint64((bootOffset + time.Duration(i)*sampleInterval).Microseconds())
		frac := float64(i) / float64(steps)

		var err error
		write := func(name string, values ...any) {
			if err == nil {
				err = fw.Write(name, values...)
			}
		}

		if i == 0 {
			write("EV", t, eventArmed)
		}
		if mode, ok := modes[i]; ok {
			write("MODE", t, mode, mode)
		}

		status, sats := 3, 12
		if i >= dropoutFrom && i < dropoutTo {
			status, sats = 1, 5
		}
		write("GPS", t, status, sats, homeLat+frac*1e-3, homeLng+frac*1e-3, altitude(frac))

		if i == dropoutFrom {
			write("ERR", t, subsysGPS, ecodeGlitch, severityFailed)
		}
		if i%5 == 0 {
			write("BAT", t, fullVoltage-voltageDrop*frac, 15.0)
		}
		if i == steps {
			write("EV", t, eventDisarmed)
		}

		if err != nil {
			return err
		}
	}
	return nil
}

// altitude climbs over the first fifth of the flight and descends over the last.
func altitude(frac float64) float64 {
	return cruiseAltitude * math.Min(1, math.Min(frac/0.2, (1-frac)/0.2))
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
