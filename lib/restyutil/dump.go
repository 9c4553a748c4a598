package restyutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
)

// DumpOutput receives one formatted exchange per request.
type DumpOutput interface {
	Write(id string, contents string)
}

type FilesystemOutput struct {
	directory string
}

// NewFilesystemOutput writes every exchange to its own file in dir, the
// directory is emptied first.
func NewFilesystemOutput(dir string) (FilesystemOutput, error) {
	err := os.RemoveAll(dir)
	if err != nil {
		return FilesystemOutput{}, err
	}
	err = os.MkdirAll(dir, 0777)
	if err != nil {
		return FilesystemOutput{}, err
	}
	return FilesystemOutput{directory: dir}, nil
}

func (o FilesystemOutput) Write(id string, contents string) {
	err := os.WriteFile(filepath.Join(o.directory, id+".txt"), []byte(contents), 0600)
	if err != nil {
		slog.Warn("failed to write http dump", "id", id, "err", err)
	}
}

// DumpExchanges writes every request made by the client and its response (or
// error) to output. A nil output makes this a no-op.
func DumpExchanges(client *resty.Client, output DumpOutput) {
	if output == nil {
		return
	}

	var idcounter uint64
	nextId := func() string {
		return fmt.Sprintf("%04d", atomic.AddUint64(&idcounter, 1))
	}

	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		output.Write(nextId(), formatHttpMessage(res))
		return nil
	})
	client.OnError(func(req *resty.Request, err error) {
		output.Write(nextId(), formatHttpError(req, err))
	})
}
