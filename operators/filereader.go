package operators

import (
	"context"
	"os"

	"github.com/joelanford/multilang"
)

// FileReader reads the files named by DirectoryWatcher tuples. Created and
// written files are emitted as (name, operation, contents); other events are
// passed through as (name, operation).
type FileReader struct {
	oc *multilang.OperatorContext
}

func NewFileReader() *FileReader {
	return &FileReader{}
}

func (b *FileReader) Setup(ctx context.Context, oc *multilang.OperatorContext) error {
	b.oc = oc
	return nil
}

func (b *FileReader) Process(ctx context.Context, t *multilang.Tuple) error {
	name, _ := t.StringAt(0)
	operation, _ := t.StringAt(1)

	if operation == "CREATE" || operation == "WRITE" {
		data, err := os.ReadFile(name)
		if err != nil {
			b.oc.Log().Infof("%s error: %s", b.oc.Name(), err)
			return nil
		}
		_, err = b.oc.Emit(multilang.NewValues(name, operation, string(data)))
		return err
	}
	_, err := b.oc.Emit(multilang.NewValues(name, operation))
	return err
}
