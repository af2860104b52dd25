package orchestrate

import (
	"context"

	"github.com/relr-dev/relr/internal/semtag"
)

// StatusInfo summarizes where the repository stands relative to its last
// release.
type StatusInfo struct {
	Branch       string
	HeadSHA      string
	Clean        bool
	LatestTag    string
	CommitsSince int
	DevVersion   string
	NextPatch    string
	NextMinor    string
	NextMajor    string
}

// Status inspects the repository and reports release posture.
func (s *Service) Status(ctx context.Context) (*StatusInfo, error) {
	st := &StatusInfo{}
	var err error
	if st.Branch, err = s.git.CurrentBranch(ctx); err != nil {
		return nil, err
	}
	if st.HeadSHA, err = s.git.HeadSHA(ctx); err != nil {
		return nil, err
	}
	if st.Clean, err = s.git.IsClean(ctx); err != nil {
		return nil, err
	}

	raw, ok, err := s.git.LatestTag(ctx)
	if err != nil {
		return nil, err
	}
	base := semtag.Tag{}
	if ok {
		st.LatestTag = raw
		if base, err = semtag.Parse(raw); err != nil {
			return nil, err
		}
		if st.CommitsSince, err = s.git.CommitsSince(ctx, raw); err != nil {
			return nil, err
		}
	} else {
		if base, err = semtag.Parse(fallbackBase); err != nil {
			return nil, err
		}
		// No tag to diff against, but the commits still count toward the
		// dev version.
		if st.CommitsSince, err = s.git.CommitCount(ctx); err != nil {
			return nil, err
		}
	}

	short, err := s.git.ShortSHA(ctx)
	if err != nil {
		return nil, err
	}
	if st.DevVersion, err = semtag.DevVersion(base, st.CommitsSince, short, false); err != nil {
		return nil, err
	}
	for _, part := range []string{"patch", "minor", "major"} {
		next, err := semtag.Bump(base, part)
		if err != nil {
			return nil, err
		}
		switch part {
		case "patch":
			st.NextPatch = next.Raw
		case "minor":
			st.NextMinor = next.Raw
		case "major":
			st.NextMajor = next.Raw
		}
	}
	return st, nil
}
