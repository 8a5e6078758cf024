package workflows

import (
	"context"
	"fmt"
	"io"

	"github.com/PolarWolf314/sigcrypt/internal/cipher"
	"github.com/PolarWolf314/sigcrypt/internal/header"
)

// InspectResult describes a container header.
type InspectResult struct {
	Header *header.Header

	// Size is the header length in bytes, as declared in its first line.
	Size int

	Fingerprint string

	// Supported reports whether Decrypt would accept the cipher options.
	Supported bool
}

// Inspect decodes the header at the start of r without contacting the agent
// or the cipher engine. Nothing past the header is read.
func Inspect(ctx context.Context, r io.Reader) (*InspectResult, error) {
	counter := &countingReader{r: r}

	hdr, err := header.Decode(counter)
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	return &InspectResult{
		Header:      hdr,
		Size:        counter.n,
		Fingerprint: fingerprint(hdr.KeyIdentity),
		Supported:   cipher.Supported(hdr.Options) == nil,
	}, nil
}

type countingReader struct {
	r io.Reader
	n int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += n
	return n, err
}
