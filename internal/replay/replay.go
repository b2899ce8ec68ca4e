// Package replay stores the released command batches of a match as
// zstd-compressed JSON lines and re-executes them against a fresh world.
package replay

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/vovakirdan/tui-rts/internal/config"
	"github.com/vovakirdan/tui-rts/internal/lockstep"
	"github.com/vovakirdan/tui-rts/internal/protocol"
	"github.com/vovakirdan/tui-rts/internal/sim"
)

// Ext is the file extension of replay logs.
const Ext = ".jsonl.zst"

// Record is one released tick.
type Record struct {
	RoomID   int           `json:"roomId"`
	Tick     uint64        `json:"tick"`
	Commands []sim.Command `json:"commands"`
}

// Writer appends records to a compressed log. The first line is the match
// header.
type Writer struct {
	roomID int

	mu  sync.Mutex
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
}

// Create opens path for writing and writes the header.
func Create(path string, info lockstep.MatchInfo) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("replay: cannot create directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("replay: cannot create %s: %w", path, err)
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	w := &Writer{
		roomID: info.RoomID,
		f:      f,
		enc:    enc,
		w:      bufio.NewWriterSize(enc, 64*1024),
	}
	if err := w.writeLine(info); err != nil {
		_ = w.Close()
		return nil, err
	}
	return w, nil
}

// Record implements lockstep.TickRecorder.
func (w *Writer) Record(gt protocol.GameTick) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.writeLine(Record{RoomID: w.roomID, Tick: gt.Tick, Commands: gt.Commands})
}

func (w *Writer) writeLine(v any) error {
	if w.w == nil {
		return errors.New("replay: writer closed")
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

// Close flushes and closes the file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	var errs []error
	if w.w != nil {
		errs = append(errs, w.w.Flush())
		w.w = nil
	}
	if w.enc != nil {
		errs = append(errs, w.enc.Close())
		w.enc = nil
	}
	if w.f != nil {
		errs = append(errs, w.f.Close())
		w.f = nil
	}
	return errors.Join(errs...)
}

// Recorder opens one log per match under Dir. It implements
// lockstep.Recorder.
type Recorder struct {
	Dir string
}

// NewRecorder returns a recorder writing under dir; "~" is expanded.
func NewRecorder(dir string) *Recorder {
	return &Recorder{Dir: config.ExpandHome(dir)}
}

// Open implements lockstep.Recorder.
func (r *Recorder) Open(info lockstep.MatchInfo) (lockstep.TickRecorder, error) {
	return Create(r.Path(info.MatchID), info)
}

// Path returns the log file of a match.
func (r *Recorder) Path(id lockstep.MatchID) string {
	return filepath.Join(r.Dir, string(id)+Ext)
}

// Reader streams a log.
type Reader struct {
	Header lockstep.MatchInfo

	f   *os.File
	dec *zstd.Decoder
	sc  *bufio.Scanner
}

// Open opens a log and reads its header.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("replay: cannot open %s: %w", path, err)
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	r := &Reader{f: f, dec: dec, sc: bufio.NewScanner(dec)}
	r.sc.Buffer(make([]byte, 64*1024), 8*1024*1024)

	if !r.sc.Scan() {
		_ = r.Close()
		if err := r.sc.Err(); err != nil {
			return nil, fmt.Errorf("replay: cannot read header: %w", err)
		}
		return nil, errors.New("replay: empty log")
	}
	if err := json.Unmarshal(r.sc.Bytes(), &r.Header); err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("replay: bad header: %w", err)
	}
	return r, nil
}

// Next returns the next record, or io.EOF.
func (r *Reader) Next() (Record, error) {
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return Record{}, err
		}
		return Record{}, io.EOF
	}
	var rec Record
	if err := json.Unmarshal(r.sc.Bytes(), &rec); err != nil {
		return Record{}, fmt.Errorf("replay: bad record: %w", err)
	}
	return rec, nil
}

// All reads every remaining record.
func (r *Reader) All() ([]Record, error) {
	var out []Record
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
}

// Close releases the file.
func (r *Reader) Close() error {
	r.dec.Close()
	return r.f.Close()
}

// ReadFile reads a whole log.
func ReadFile(path string) (lockstep.MatchInfo, []Record, error) {
	r, err := Open(path)
	if err != nil {
		return lockstep.MatchInfo{}, nil, err
	}
	defer r.Close()
	recs, err := r.All()
	return r.Header, recs, err
}

// Apply re-executes records against w the way a lockstep client does: the
// world is stepped up to each record's tick, the commands are applied, and
// the tick itself is stepped. Records must be in tick order.
func Apply(w *sim.World, records []Record) error {
	for i, rec := range records {
		if rec.Tick < w.Tick() {
			return fmt.Errorf("replay: record %d for tick %d is behind the world at %d", i, rec.Tick, w.Tick())
		}
		for w.Tick() < rec.Tick {
			w.Step()
		}
		for _, cmd := range rec.Commands {
			cmd.Apply(w)
		}
		w.Step()
	}
	return nil
}
