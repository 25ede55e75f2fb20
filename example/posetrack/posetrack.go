package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/swdee/go-posetrack"
	"github.com/swdee/go-posetrack/analysis"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// maxLineSize is the longest JSON line accepted, enough for a frame holding
// the maximum number of bodies
const maxLineSize = 1024 * 1024

// Replay feeds recorded pose model output through a pipeline
type Replay struct {
	// pipeline processing the recorded frames
	pipeline *posetrack.Pipeline
	// decimator skipping frames to simulate a slower analysis rate
	decimator *posetrack.Decimator
	log       logrus.FieldLogger
	// start is the time the first recorded frame is mapped to
	start time.Time
}

// NewReplay returns a Replay using the given pipeline parameters
func NewReplay(params posetrack.Params, every int, log logrus.FieldLogger) *Replay {
	return &Replay{
		pipeline:  posetrack.New(params, posetrack.WithLogger(log)),
		decimator: &posetrack.Decimator{Every: every},
		log:       log,
		start:     time.Now(),
	}
}

// parseFrame reads a recorded frame in the form
//
//	{"ts": 33, "width": 640, "height": 480, "bodies": [[y, x, score, ...]]}
//
// where ts is the capture time in milliseconds since the start of recording
func (r *Replay) parseFrame(line []byte) (posetrack.Frame, error) {

	if !gjson.ValidBytes(line) {
		return posetrack.Frame{}, errors.New("invalid JSON")
	}

	doc := gjson.ParseBytes(line)

	f := posetrack.Frame{
		Width:     doc.Get("width").Float(),
		Height:    doc.Get("height").Float(),
		Timestamp: r.start.Add(time.Duration(doc.Get("ts").Float() * float64(time.Millisecond))),
	}

	doc.Get("bodies").ForEach(func(_, body gjson.Result) bool {
		var buf []float32
		body.ForEach(func(_, v gjson.Result) bool {
			buf = append(buf, float32(v.Float()))
			return true
		})
		f.Bodies = append(f.Bodies, buf)
		return true
	})

	return f, nil
}

// Run processes every JSON line read from in and writes each admitted frame
// with its result attached to out
func (r *Replay) Run(ctx context.Context, in io.Reader, out io.Writer) error {

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	w := bufio.NewWriter(out)

	lineNo := 0
	processed := 0
	start := time.Now()

	for scanner.Scan() {
		lineNo++

		line := scanner.Bytes()

		if len(line) == 0 || !r.decimator.Admit() {
			continue
		}

		frame, err := r.parseFrame(line)

		if err != nil {
			r.log.WithError(err).WithField("line", lineNo).Warn("skipping frame")
			continue
		}

		res, err := r.pipeline.Process(ctx, frame)

		if err != nil {
			return err
		}

		enc, err := json.Marshal(res)

		if err != nil {
			return errors.Wrap(err, "failed to encode result")
		}

		record, err := sjson.SetRawBytes(line, "result", enc)

		if err != nil {
			return errors.Wrapf(err, "failed to attach result to line %d", lineNo)
		}

		record, err = sjson.SetBytes(record, "session", r.pipeline.SessionID().String())

		if err != nil {
			return errors.Wrapf(err, "failed to attach session to line %d", lineNo)
		}

		for i, t := range res.Tracks {
			record, err = sjson.SetBytes(record, fmt.Sprintf("result.tracks.%d.lifetimeMs", i),
				t.Lifetime(frame.Timestamp).Milliseconds())

			if err != nil {
				return errors.Wrapf(err, "failed to attach track lifetime to line %d", lineNo)
			}
		}

		if _, err := w.Write(append(record, '\n')); err != nil {
			return errors.Wrapf(err, "failed to write line %d", lineNo)
		}

		processed++
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "failed reading frames")
	}

	if err := w.Flush(); err != nil {
		return errors.Wrap(err, "failed to write results")
	}

	r.log.WithFields(logrus.Fields{
		"lines":     lineNo,
		"processed": processed,
		"elapsed":   time.Since(start),
	}).Info("replay finished")

	return nil
}

func main() {

	paramsFile := flag.String("p", "", "JSON params file, defaults are used if not set")
	lift := flag.String("l", "", "Lift type to analyse, squat, bench or deadlift")
	every := flag.Int("e", 1, "Process every Nth frame")
	height := flag.Float64("height", 0, "User height in cm")
	weight := flag.Float64("weight", 0, "User weight in kg")
	focus := flag.Int("f", 0, "Track ID to analyse, 0 selects the largest body")
	verbose := flag.Bool("v", false, "Enable debug logging")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] < frames.jsonl > results.jsonl\n", os.Args[0])
		flag.PrintDefaults()
	}

	flag.Parse()

	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	params := posetrack.DefaultParams()

	if *paramsFile != "" {
		var err error
		params, err = posetrack.LoadParams(*paramsFile)

		if err != nil {
			log.Fatalf("Error loading params: %v", err)
		}
	}

	replay := NewReplay(params, *every, log)

	if *lift != "" {
		replay.pipeline.SetLift(*lift)
	}

	if *height > 0 || *weight > 0 {
		replay.pipeline.SetProfile(analysis.Profile{HeightCm: *height, WeightKg: *weight})
	}

	replay.pipeline.SetFocus(*focus)

	log.WithField("session", replay.pipeline.SessionID().String()).Info("replaying frames from stdin")

	if err := replay.Run(context.Background(), os.Stdin, os.Stdout); err != nil {
		log.Fatalf("Error replaying frames: %v", err)
	}
}
