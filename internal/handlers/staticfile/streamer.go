package staticfile

import (
	"errors"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strconv"
	"sync"

	"example.com/simplewebserver/internal/logger"
)

// ChunkSize is the unit files are copied to the client in.
const ChunkSize = 4096

var chunkPool = sync.Pool{
	New: func() interface{} {
		b := make([]byte, ChunkSize)
		return &b
	},
}

// Stream sends the file at absPath as a 200 response. The file must be a
// regular file; anything else yields NotFound and nothing is written to w.
//
// Content-Length is declared from the file size before the first chunk.
// A read or write failure mid-stream is logged and ends the response early:
// the client sees a body shorter than the declared length.
func Stream(absPath string, w http.ResponseWriter, lg *logger.Logger) Outcome {
	info, err := os.Stat(absPath)
	if err != nil || !info.Mode().IsRegular() {
		return Outcome{Kind: NotFound}
	}

	// os.Open takes no lock; other processes may keep writing the file.
	f, err := os.Open(absPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			lg.Warn("Error opening file", logger.LogFields{"path": absPath, "error": err.Error()})
		}
		return Outcome{Kind: NotFound}
	}
	defer f.Close()

	w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	w.WriteHeader(http.StatusOK)

	bufp := chunkPool.Get().(*[]byte)
	defer chunkPool.Put(bufp)
	buf := *bufp

	var written int64
	for {
		n, rerr := f.Read(buf)
		if n > 0 {
			wn, werr := w.Write(buf[:n])
			written += int64(wn)
			if werr != nil {
				lg.Warn("Error writing file to client", logger.LogFields{"path": absPath, "written": written, "error": werr.Error()})
				return Outcome{Kind: StreamError, Bytes: written, Reason: werr.Error()}
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			lg.Error("Error reading file", logger.LogFields{"path": absPath, "written": written, "error": rerr.Error()})
			return Outcome{Kind: StreamError, Bytes: written, Reason: rerr.Error()}
		}
	}
	return Outcome{Kind: Served, Bytes: written}
}
