package store

import (
	"bufio"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"expvar"
	"fmt"
	"hash/crc32"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/INLOpen/inklog/compressors"
	"github.com/INLOpen/inklog/core"
)

const (
	segmentFileSuffix = ".ann"
	// segmentMagic marks an annotation segment file ("INKL").
	segmentMagic uint32 = 0x494E4B4C
	// segmentVersion is bumped when the frame layout changes.
	segmentVersion uint8 = 1
)

// SyncMode controls how eagerly appends reach stable storage.
type SyncMode string

const (
	SyncAlways   SyncMode = "always"   // fsync after every record
	SyncDisabled SyncMode = "disabled" // rely on OS flushing (tests, benchmarks)
)

// fileHeader is the fixed prefix of every segment file.
type fileHeader struct {
	Magic       uint32
	Version     uint8
	Compression uint8
	Reserved    [2]byte
}

// Options configures a FileStore.
type Options struct {
	Dir            string
	Compression    compressors.Type
	SyncMode       SyncMode
	Logger         *slog.Logger
	BytesWritten   *expvar.Int
	RecordsWritten *expvar.Int
}

// FileStore keeps one append-only segment file per session under Dir.
// Records are framed as length | compressed JSON payload | CRC32, after a
// header carrying the magic number and compression flag.
type FileStore struct {
	dir        string
	compressor compressors.Compressor
	syncMode   SyncMode
	logger     *slog.Logger

	writers map[SessionKey]*segmentWriter

	metricsBytesWritten   *expvar.Int
	metricsRecordsWritten *expvar.Int
}

var _ RecordStore = (*FileStore)(nil)

type segmentWriter struct {
	file   *os.File
	writer *bufio.Writer
}

// Open creates or reuses the store directory.
func Open(opts Options) (*FileStore, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.SyncMode == "" {
		opts.SyncMode = SyncAlways
	}
	compressor, err := compressors.For(opts.Compression)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory %s: %w", opts.Dir, err)
	}
	return &FileStore{
		dir:                   opts.Dir,
		compressor:            compressor,
		syncMode:              opts.SyncMode,
		logger:                logger.With("component", "FileStore", "dir", opts.Dir),
		writers:               make(map[SessionKey]*segmentWriter),
		metricsBytesWritten:   opts.BytesWritten,
		metricsRecordsWritten: opts.RecordsWritten,
	}, nil
}

func segmentFileName(key SessionKey) string {
	return fmt.Sprintf("s%08d_u%08d%s", key.SlideID, key.UserID, segmentFileSuffix)
}

// Persist appends one record to the session's segment, creating it on
// first use. Transient records are refused: they must never be stored.
func (fs *FileStore) Persist(ctx context.Context, key SessionKey, rec *core.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rec == nil {
		return &core.MalformedRecordError{Field: "record", Reason: "nil record"}
	}
	if rec.Transient {
		return &core.MalformedRecordError{Field: "record", Reason: "transient records are not persistable"}
	}
	if err := rec.Validate(); err != nil {
		return err
	}

	sw, err := fs.writerFor(key)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record for %s: %w", key, err)
	}
	compressed, err := fs.compressor.Compress(payload)
	if err != nil {
		return fmt.Errorf("failed to compress record for %s: %w", key, err)
	}

	if err := binary.Write(sw.writer, binary.LittleEndian, uint32(len(compressed))); err != nil {
		return fmt.Errorf("failed to write record length: %w", err)
	}
	if _, err := sw.writer.Write(compressed); err != nil {
		return fmt.Errorf("failed to write record payload: %w", err)
	}
	if err := binary.Write(sw.writer, binary.LittleEndian, crc32.ChecksumIEEE(compressed)); err != nil {
		return fmt.Errorf("failed to write record checksum: %w", err)
	}

	if err := sw.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush segment for %s: %w", key, err)
	}
	if fs.syncMode == SyncAlways {
		if err := sw.file.Sync(); err != nil {
			return fmt.Errorf("failed to sync segment for %s: %w", key, err)
		}
	}

	if fs.metricsBytesWritten != nil {
		fs.metricsBytesWritten.Add(int64(len(compressed) + 8))
	}
	if fs.metricsRecordsWritten != nil {
		fs.metricsRecordsWritten.Add(1)
	}
	return nil
}

func (fs *FileStore) writerFor(key SessionKey) (*segmentWriter, error) {
	if sw, ok := fs.writers[key]; ok {
		return sw, nil
	}

	path := filepath.Join(fs.dir, segmentFileName(key))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open segment file %s: %w", path, err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat segment file %s: %w", path, err)
	}

	if stat.Size() == 0 {
		header := fileHeader{
			Magic:       segmentMagic,
			Version:     segmentVersion,
			Compression: uint8(fs.compressor.Type()),
		}
		if err := binary.Write(file, binary.LittleEndian, &header); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write segment header to %s: %w", path, err)
		}
	} else {
		header, err := readHeader(file)
		if err != nil {
			file.Close()
			return nil, err
		}
		if compressors.Type(header.Compression) != fs.compressor.Type() {
			file.Close()
			return nil, fmt.Errorf("segment %s was written with %s compression, store is configured for %s",
				path, compressors.Type(header.Compression), fs.compressor.Type())
		}
		if _, err := file.Seek(0, io.SeekEnd); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to seek to end of %s: %w", path, err)
		}
	}

	sw := &segmentWriter{file: file, writer: bufio.NewWriter(file)}
	fs.writers[key] = sw
	return sw, nil
}

func readHeader(r io.Reader) (fileHeader, error) {
	var header fileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return header, fmt.Errorf("failed to read segment header: %w", err)
	}
	if header.Magic != segmentMagic {
		return header, fmt.Errorf("invalid magic number: got %x, want %x", header.Magic, segmentMagic)
	}
	return header, nil
}

// LoadAll reads the session's full history in insertion order. A missing
// segment is an empty history. A torn final frame ends the sequence;
// undecodable payloads are skipped with a warning.
func (fs *FileStore) LoadAll(ctx context.Context, key SessionKey) ([]*core.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Make buffered appends from this process visible to the reader.
	if sw, ok := fs.writers[key]; ok {
		if err := sw.writer.Flush(); err != nil {
			return nil, fmt.Errorf("failed to flush segment before load: %w", err)
		}
	}

	path := filepath.Join(fs.dir, segmentFileName(key))
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open segment file %s: %w", path, err)
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	header, err := readHeader(reader)
	if err != nil {
		return nil, fmt.Errorf("segment %s: %w", path, err)
	}
	decompressor, err := compressors.For(compressors.Type(header.Compression))
	if err != nil {
		return nil, fmt.Errorf("segment %s: %w", path, err)
	}

	var records []*core.Record
	for i := 0; ; i++ {
		payload, err := readFrame(reader)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if errors.Is(err, io.ErrUnexpectedEOF) {
				fs.logger.Warn("segment has a torn tail, keeping records read so far",
					"session", key.String(), "records", len(records))
				break
			}
			// A checksum mismatch means everything after this point is
			// untrustworthy; stop rather than resync.
			fs.logger.Error("segment corrupt, stopping load",
				"session", key.String(), "frame", i, "error", err)
			break
		}

		rec, err := decodeRecord(decompressor, payload)
		if err != nil {
			fs.logger.Warn("skipping undecodable record", "session", key.String(), "frame", i, "error", err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// readFrame reads one length | payload | crc frame.
func readFrame(r *bufio.Reader) ([]byte, error) {
	var length uint32
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return nil, err // io.EOF here is a clean end of file
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	var checksum uint32
	if err := binary.Read(r, binary.LittleEndian, &checksum); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	if crc32.ChecksumIEEE(payload) != checksum {
		return nil, fmt.Errorf("checksum mismatch")
	}
	return payload, nil
}

func decodeRecord(decompressor compressors.Compressor, payload []byte) (*core.Record, error) {
	rc, err := decompressor.Decompress(payload)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	var rec core.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, &core.MalformedRecordError{Field: "payload", Reason: err.Error()}
	}
	return &rec, nil
}

// Close flushes and closes all open session segments.
func (fs *FileStore) Close() error {
	var firstErr error
	for key, sw := range fs.writers {
		if err := sw.writer.Flush(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to flush segment for %s: %w", key, err)
		}
		if err := sw.file.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close segment for %s: %w", key, err)
		}
	}
	fs.writers = make(map[SessionKey]*segmentWriter)
	return firstErr
}
