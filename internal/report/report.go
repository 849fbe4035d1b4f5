package report

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ivlev/killreel/internal/audio"
	"github.com/ivlev/killreel/internal/events"
	"github.com/ivlev/killreel/internal/segment"
	"github.com/ivlev/killreel/internal/system"
)

// Groups renders the event grouping.
func Groups(groups []events.Group) string {
	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, []string{
			strconv.Itoa(g.Ordinal),
			strconv.Itoa(len(g.Timestamps)),
			seconds(g.First()),
			seconds(g.Last()),
		})
	}
	return RenderTable(
		[]string{"Group", "Events", "First", "Last"},
		rows,
		[]Alignment{AlignRight, AlignRight, AlignRight, AlignRight},
	)
}

// Segments renders the final sequence next to its music slices. tracks may be nil.
func Segments(segs []segment.Segment, tracks []audio.MixedTrack) string {
	byOrdinal := make(map[int]audio.MixedTrack, len(tracks))
	for _, t := range tracks {
		byOrdinal[t.Ordinal] = t
	}
	rows := make([][]string, 0, len(segs))
	for _, s := range segs {
		music := "-"
		if t, ok := byOrdinal[s.Ordinal]; ok {
			music = fmt.Sprintf("%s x%d", seconds(t.Slice.LoopStart), t.Slice.Copies)
		}
		rows = append(rows, []string{
			strconv.Itoa(s.Ordinal),
			s.Kind.String(),
			strconv.Itoa(s.Group),
			strconv.Itoa(s.Frames),
			seconds(s.Duration),
			music,
		})
	}
	return RenderTable(
		[]string{"#", "Kind", "Group", "Frames", "Duration", "Music"},
		rows,
		[]Alignment{AlignRight, AlignLeft, AlignRight, AlignRight, AlignRight, AlignRight},
	)
}

// Stage is the wall time of one pipeline stage.
type Stage struct {
	Name     string
	Duration time.Duration
}

// Stats is the performance summary of a run.
type Stats struct {
	RunID      string
	Encoder    string
	Workers    int
	Stages     []Stage
	Total      time.Duration
	OutputSize int64
	Host       system.HostStats
}

// Render draws the stage timings and the host snapshot.
func (s Stats) Render() string {
	rows := make([][]string, 0, len(s.Stages)+1)
	for _, st := range s.Stages {
		rows = append(rows, []string{st.Name, st.Duration.Round(time.Millisecond).String()})
	}
	rows = append(rows, []string{"total", s.Total.Round(time.Millisecond).String()})

	var b strings.Builder
	b.WriteString(RenderTable([]string{"Stage", "Time"}, rows, []Alignment{AlignLeft, AlignRight}))
	b.WriteByte('\n')
	b.WriteString(RenderTable(
		[]string{"Setting", "Value"},
		[][]string{
			{"Run", s.RunID},
			{"Encoder", s.Encoder},
			{"Workers", strconv.Itoa(s.Workers)},
			{"Output size", humanize.Bytes(uint64(max(s.OutputSize, 0)))},
			{"Host", strings.TrimSpace(s.Host.Hostname + " " + s.Host.Platform)},
			{"CPUs", strconv.Itoa(s.Host.LogicalCPUs)},
			{"Memory", fmt.Sprintf("%s free of %s", humanize.Bytes(s.Host.MemAvailable), humanize.Bytes(s.Host.MemTotal))},
		},
		[]Alignment{AlignLeft, AlignLeft},
	))
	return b.String()
}

// AppendLog appends the rendered stats to a benchmark log.
func AppendLog(path string, s Stats) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = fmt.Fprintf(f, "--- %s ---\n%s\n\n", time.Now().Format(time.RFC3339), s.Render())
	return err
}

func seconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64) + "s"
}
