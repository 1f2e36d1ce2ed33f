package sources

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"metricsdash/internal/models"
	"metricsdash/internal/providers"
	"metricsdash/internal/structures"
)

const (
	GitHubSourceName = "github"

	githubPageSize   = 100
	githubAPIVersion = "2022-11-28"
)

var githubDefaults = models.FetchPolicy{
	ChunkThreshold: 90 * 24 * time.Hour,
	ChunkSize:      30 * 24 * time.Hour,
	Concurrency:    2,
}

type githubCommit struct {
	SHA    string `json:"sha"`
	Commit struct {
		Author struct {
			Date string `json:"date"`
		} `json:"author"`
	} `json:"commit"`
}

type githubPull struct {
	Number    int        `json:"number"`
	UpdatedAt time.Time  `json:"updated_at"`
	MergedAt  *time.Time `json:"merged_at"`
}

// GitHubSource counts commits and merged pull requests across the configured repositories.
type GitHubSource struct {
	client  *upstreamClient
	baseURL string
	owner   string
	repos   []string
	policy  models.FetchPolicy
}

func NewGitHubSource(conf structures.GitHubSourceConfig, agg structures.AggregationConfig, logger providers.Logger, metrics providers.MetricsProviderInterface) *GitHubSource {
	client := newUpstreamClient(GitHubSourceName, agg.UpstreamTimeout, conf.RateLimit, logger, metrics)
	client.setHeader("X-GitHub-Api-Version", githubAPIVersion)
	if conf.Token != "" {
		client.setHeader("Authorization", "Bearer "+conf.Token)
	}
	return &GitHubSource{
		client:  client,
		baseURL: strings.TrimRight(conf.BaseURL, "/"),
		owner:   conf.Owner,
		repos:   conf.Repos,
		policy:  policyFrom(githubDefaults, conf.Chunking, agg.Concurrency),
	}
}

func (s *GitHubSource) Name() string { return GitHubSourceName }

func (s *GitHubSource) DefaultFields() []string { return []string{"commits", "mergedPulls"} }

func (s *GitHubSource) Policy() models.FetchPolicy { return s.policy }

func (s *GitHubSource) FetchWindow(ctx context.Context, start, end time.Time) ([]models.RawRecord, error) {
	var records []models.RawRecord
	for _, repo := range s.repos {
		commits, err := s.commits(ctx, repo, start, end)
		if err != nil {
			return nil, err
		}
		pulls, err := s.mergedPulls(ctx, repo, start, end)
		if err != nil {
			return nil, err
		}
		records = append(records, commits...)
		records = append(records, pulls...)
	}
	return records, nil
}

func (s *GitHubSource) commits(ctx context.Context, repo string, start, end time.Time) ([]models.RawRecord, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/commits", s.baseURL, s.owner, repo)
	var records []models.RawRecord
	for page := 1; ; page++ {
		if page > maxPagesPerRun {
			return nil, fmt.Errorf("github commits %s: %w (%d pages)", repo, ErrPageLimit, maxPagesPerRun)
		}
		query := url.Values{}
		query.Set("since", start.UTC().Format(time.RFC3339))
		query.Set("until", end.UTC().Format(time.RFC3339))
		query.Set("per_page", strconv.Itoa(githubPageSize))
		query.Set("page", strconv.Itoa(page))

		var batch []githubCommit
		if err := s.client.getJSON(ctx, endpoint, query, &batch); err != nil {
			return nil, fmt.Errorf("github commits %s page %d: %w", repo, page, err)
		}
		for _, c := range batch {
			records = append(records, models.RawRecord{
				models.FieldTimestamp: c.Commit.Author.Date,
				"commits":             1,
				"repo":                repo,
			})
		}
		if len(batch) < githubPageSize {
			break
		}
	}
	return records, nil
}

// mergedPulls walks closed pulls newest-updated first and stops once a page
// falls entirely before start; the pulls API has no date filter.
func (s *GitHubSource) mergedPulls(ctx context.Context, repo string, start, end time.Time) ([]models.RawRecord, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/pulls", s.baseURL, s.owner, repo)
	interval := models.Interval{Start: start, End: end}
	var records []models.RawRecord
	for page := 1; ; page++ {
		if page > maxPagesPerRun {
			return nil, fmt.Errorf("github pulls %s: %w (%d pages)", repo, ErrPageLimit, maxPagesPerRun)
		}
		query := url.Values{}
		query.Set("state", "closed")
		query.Set("sort", "updated")
		query.Set("direction", "desc")
		query.Set("per_page", strconv.Itoa(githubPageSize))
		query.Set("page", strconv.Itoa(page))

		var batch []githubPull
		if err := s.client.getJSON(ctx, endpoint, query, &batch); err != nil {
			return nil, fmt.Errorf("github pulls %s page %d: %w", repo, page, err)
		}
		stale := true
		for _, p := range batch {
			if !p.UpdatedAt.Before(start) {
				stale = false
			}
			if p.MergedAt == nil || !interval.Contains(*p.MergedAt) {
				continue
			}
			records = append(records, models.RawRecord{
				models.FieldTimestamp: p.MergedAt.UTC().Format(time.RFC3339),
				"mergedPulls":         1,
				"repo":                repo,
			})
		}
		if len(batch) < githubPageSize || stale {
			break
		}
	}
	return records, nil
}
