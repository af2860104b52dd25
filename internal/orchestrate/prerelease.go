package orchestrate

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/relr-dev/relr/internal/semtag"
	"github.com/relr-dev/relr/internal/store"
)

// PublishPrerelease publishes a preview build for a pull request: a
// prerelease tag derived from the latest release, a GitHub prerelease on it,
// and an install-link comment on the PR. Returns the actions performed.
func (s *Service) PublishPrerelease(ctx context.Context, prNumber int) ([]string, error) {
	if s.hub == nil {
		return nil, fmt.Errorf("prerelease publish requires github configuration")
	}
	base, err := s.latestBase(ctx)
	if err != nil {
		return nil, err
	}
	shortSHA, err := s.git.ShortSHA(ctx)
	if err != nil {
		return nil, err
	}
	tag, err := semtag.ForPullRequest(base, prNumber, shortSHA)
	if err != nil {
		return nil, err
	}
	if existing, err := s.repo.GetReleaseByTag(tag.Raw); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("prerelease %s already published for PR #%d", tag, prNumber)
	}
	sha, err := s.git.HeadSHA(ctx)
	if err != nil {
		return nil, err
	}

	actions := []string{}
	if err := s.git.CreateTag(ctx, tag.Raw, fmt.Sprintf("Prerelease for PR #%d", prNumber)); err != nil {
		return nil, err
	}
	if err := s.git.PushTag(ctx, s.cfg.Git.Remote, tag.Raw); err != nil {
		return nil, err
	}
	actions = append(actions, fmt.Sprintf("Pushed prerelease tag %s", tag))

	ghRel, err := s.hub.CreateRelease(ctx, tag.Raw,
		fmt.Sprintf("Prerelease for PR #%d", prNumber),
		fmt.Sprintf("Automated preview build for pull request #%d at %s. Not production-ready.", prNumber, shortSHA),
		false, true)
	if err != nil {
		return nil, err
	}
	actions = append(actions, fmt.Sprintf("Created GitHub prerelease %s", ghRel.HTMLURL))

	wheelURL := s.wheelDownloadURL(tag)
	comment, err := s.hub.CreateIssueComment(ctx, prNumber, prereleaseComment(tag, wheelURL))
	if err != nil {
		return nil, err
	}
	actions = append(actions, fmt.Sprintf("Posted install link on PR #%d: %s", prNumber, comment.HTMLURL))

	branch, _ := s.git.CurrentBranch(ctx)
	name, email := s.identity(ctx)
	rel := store.Release{
		Tag:         tag.Raw,
		Version:     tag.Version.String(),
		CommitSHA:   sha,
		Branch:      nullString(branch),
		Channel:     store.ChannelPrerelease,
		Status:      store.StatusPending,
		PRNumber:    sql.NullInt64{Int64: int64(prNumber), Valid: true},
		ArtifactURL: nullString(wheelURL),
		AuthorName:  nullString(name),
		AuthorEmail: nullString(email),
	}
	id, err := s.repo.CreateRelease(rel)
	if err != nil {
		return nil, err
	}
	detail := fmt.Sprintf(`{"pr":%d,"release_id":%d,"url":%q}`, prNumber, ghRel.ID, ghRel.HTMLURL)
	if err := s.repo.SetStatus(id, store.StatusPublished, store.OpPublish, detail); err != nil {
		return nil, err
	}
	if err := s.repo.RecordEvent(id, store.OpComment, fmt.Sprintf(`{"comment_url":%q}`, comment.HTMLURL)); err != nil {
		return nil, err
	}
	return actions, nil
}

// CleanupPrerelease removes every open prerelease published for a pull
// request: the GitHub release, the remote tag, and the registry rows are
// marked cleaned. Invoked when the PR closes.
func (s *Service) CleanupPrerelease(ctx context.Context, prNumber int) ([]string, error) {
	if s.hub == nil {
		return nil, fmt.Errorf("prerelease cleanup requires github configuration")
	}
	rels, err := s.repo.ListByPRNumber(prNumber)
	if err != nil {
		return nil, err
	}
	actions := []string{}
	for _, rel := range rels {
		if rel.Status == store.StatusCleaned {
			continue
		}
		ghRel, err := s.hub.GetReleaseByTag(ctx, rel.Tag)
		if err != nil {
			return nil, err
		}
		if ghRel != nil {
			if err := s.hub.DeleteRelease(ctx, ghRel.ID); err != nil {
				return nil, err
			}
			actions = append(actions, fmt.Sprintf("Deleted GitHub prerelease for %s", rel.Tag))
		}
		if err := s.git.DeleteRemoteTag(ctx, s.cfg.Git.Remote, rel.Tag); err != nil {
			// The tag may already be gone on the remote; keep going but say so.
			s.log.Warn("delete remote tag", "tag", rel.Tag, "err", err)
		} else {
			actions = append(actions, fmt.Sprintf("Deleted remote tag %s", rel.Tag))
		}
		_ = s.git.DeleteLocalTag(ctx, rel.Tag)
		detail := fmt.Sprintf(`{"pr":%d,"tag":%q}`, prNumber, rel.Tag)
		if err := s.repo.SetStatus(rel.ID, store.StatusCleaned, store.OpCleanup, detail); err != nil {
			return nil, err
		}
	}
	if len(actions) == 0 {
		actions = append(actions, fmt.Sprintf("No open prereleases for PR #%d", prNumber))
	}
	return actions, nil
}

// wheelDownloadURL is where CI attaches the built wheel for a tag. The file
// name follows the wheel convention for a pure-python package.
func (s *Service) wheelDownloadURL(tag semtag.Tag) string {
	pkg := s.cfg.Project.Package
	if pkg == "" {
		pkg = s.cfg.GitHub.Repo
	}
	pkg = strings.ReplaceAll(pkg, "-", "_")
	return fmt.Sprintf("https://github.com/%s/%s/releases/download/%s/%s-%s-py3-none-any.whl",
		s.cfg.GitHub.Owner, s.cfg.GitHub.Repo, tag.Raw, pkg, tag.Version.String())
}

func prereleaseComment(tag semtag.Tag, wheelURL string) string {
	return fmt.Sprintf(
		"A prerelease build for this pull request is available as %s.\n\nInstall it with:\n\n```\npip install %s\n```\n\nThis prerelease is removed automatically when the pull request closes.",
		tag, wheelURL)
}
