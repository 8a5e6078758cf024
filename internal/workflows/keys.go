package workflows

import (
	"context"
	"fmt"
	"regexp"

	"github.com/PolarWolf314/sigcrypt/internal/configs"
	kerrors "github.com/PolarWolf314/sigcrypt/internal/errors"
	"github.com/PolarWolf314/sigcrypt/internal/keys"
)

// KeyInfo describes one identity held by the agent.
type KeyInfo struct {
	Identity    keys.Identity
	Algorithm   string
	Fingerprint string
	Comment     string

	// Usable is false for ecdsa-family keys, whose signatures are not
	// deterministic.
	Usable bool

	// Matches reports whether the configured pattern selects this key.
	// It is true for every key when no pattern is configured.
	Matches bool
}

// ListKeysResult contains the agent's identities.
type ListKeysResult struct {
	Keys []KeyInfo

	// Selected is the identity Encrypt would use, empty if the selection is
	// ambiguous or finds nothing.
	Selected keys.Identity
}

// ListKeys reports every identity the agent holds.
//
// Returns ErrAgentUnavailable if the agent cannot be listed.
// Returns ErrInvalidPattern if the configured pattern does not compile.
func ListKeys(ctx context.Context, cfg *configs.Config) (*ListKeysResult, error) {
	var re *regexp.Regexp
	if cfg.Key.Pattern != "" {
		var err error
		if re, err = regexp.Compile(cfg.Key.Pattern); err != nil {
			return nil, fmt.Errorf("%w: %v", kerrors.ErrInvalidPattern, err)
		}
	}

	lines, err := newLister(cfg).List(ctx)
	if err != nil {
		return nil, err
	}

	result := &ListKeysResult{}
	for _, line := range lines {
		id := keys.Normalize(line)
		result.Keys = append(result.Keys, KeyInfo{
			Identity:    id,
			Algorithm:   id.Algorithm(),
			Fingerprint: fingerprint(id),
			Comment:     keys.Comment(line),
			Usable:      !keys.IsECDSA(line),
			Matches:     re == nil || re.MatchString(line),
		})
	}

	if selected, err := keys.Select(lines, cfg.Key.Pattern); err == nil {
		result.Selected = selected
	}

	return result, nil
}
