package youtube

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const (
	highEngagementRate = 5.0
	viralEngagement    = 10.0
	highLikes          = 1000
	activeComments     = 100
	detailedDescLength = 500
	manyTags           = 5
	commonTagLimit     = 10
)

var videoParts = []string{"snippet", "contentDetails", "statistics"}

// ErrVideoNotFound is returned when the Data API has no such video.
var ErrVideoNotFound = errors.New("youtube: video not found")

type VideoDetails struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Channel      string   `json:"channel"`
	Duration     string   `json:"duration"`
	Views        uint64   `json:"view_count"`
	Likes        uint64   `json:"like_count"`
	Comments     uint64   `json:"comment_count"`
	PublishedAt  string   `json:"published_at"`
	ThumbnailURL string   `json:"thumbnail_url"`
	Tags         []string `json:"tags"`
	CategoryID   string   `json:"category_id"`
}

type Engagement struct {
	Views     uint64  `json:"views"`
	Likes     uint64  `json:"likes"`
	Comments  uint64  `json:"comments"`
	Rate      float64 `json:"engagement_rate"`
	LikeRatio float64 `json:"like_ratio"`
}

type QualityIndicators struct {
	HighEngagement  bool   `json:"high_engagement"`
	HighLikes       bool   `json:"high_likes"`
	ActiveCommunity bool   `json:"active_community"`
	ViralPotential  string `json:"viral_potential"`
}

type ProductionInsights struct {
	DurationMinutes   float64 `json:"duration_minutes"`
	TagCount          int     `json:"tag_count"`
	DescriptionLength int     `json:"description_length"`
	HasLinks          bool    `json:"has_links"`
}

type QualityReport struct {
	Video      VideoDetails       `json:"video_info"`
	Engagement Engagement         `json:"engagement_metrics"`
	Indicators QualityIndicators  `json:"quality_indicators"`
	Insights   ProductionInsights `json:"production_insights"`
}

type Comparison struct {
	Count                  int      `json:"analysis_count"`
	AverageEngagementRate  float64  `json:"average_engagement_rate"`
	AverageDurationMinutes float64  `json:"average_duration_minutes"`
	CommonTags             []string `json:"common_tags"`
	BestPractices          []string `json:"best_practices"`
}

type Reference struct {
	Video           VideoDetails `json:"reference_video"`
	QualityScore    string       `json:"quality_score"`
	EngagementRate  float64      `json:"engagement_rate"`
	DurationMinutes float64      `json:"optimal_duration"`
	RecommendedTags []string     `json:"recommended_tags"`
	Recommendations []string     `json:"recommendations"`
}

// Analyzer reads public video metadata through the authenticated Data
// API to benchmark reference videos.
type Analyzer struct {
	auth        *Auth
	serviceOpts []option.ClientOption
}

func NewAnalyzer(auth *Auth) *Analyzer {
	return newAnalyzer(auth)
}

func newAnalyzer(auth *Auth, opts ...option.ClientOption) *Analyzer {
	return &Analyzer{auth: auth, serviceOpts: opts}
}

// Videos fetches details for ids in one request, in the API's order.
func (a *Analyzer) Videos(ctx context.Context, ids ...string) ([]VideoDetails, error) {
	svc, err := a.auth.service(ctx, a.serviceOpts...)
	if err != nil {
		return nil, err
	}
	resp, err := svc.Videos.List(videoParts).Id(ids...).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}

	out := make([]VideoDetails, 0, len(resp.Items))
	for _, v := range resp.Items {
		out = append(out, detailsFrom(v))
	}
	return out, nil
}

func (a *Analyzer) VideoDetails(ctx context.Context, id string) (*VideoDetails, error) {
	videos, err := a.Videos(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(videos) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrVideoNotFound, id)
	}
	return &videos[0], nil
}

func (a *Analyzer) AnalyzeQuality(ctx context.Context, id string) (*QualityReport, error) {
	d, err := a.VideoDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	r := Quality(*d)
	return &r, nil
}

// Compare benchmarks several videos against each other. Ids the API does
// not return are skipped.
func (a *Analyzer) Compare(ctx context.Context, ids []string) (*Comparison, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("compare: no video ids")
	}
	videos, err := a.Videos(ctx, ids...)
	if err != nil {
		return nil, err
	}
	if len(videos) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrVideoNotFound, strings.Join(ids, ","))
	}
	reports := make([]QualityReport, len(videos))
	for i, v := range videos {
		reports[i] = Quality(v)
	}
	c := Compare(reports)
	return &c, nil
}

// AnalyzeReference resolves a watch, youtu.be or Shorts URL and turns the
// video's numbers into production targets.
func (a *Analyzer) AnalyzeReference(ctx context.Context, url string) (*Reference, error) {
	id, ok := VideoIDFromURL(url)
	if !ok {
		return nil, fmt.Errorf("invalid YouTube URL %q", url)
	}
	r, err := a.AnalyzeQuality(ctx, id)
	if err != nil {
		return nil, err
	}

	score := "medium"
	if r.Indicators.HighEngagement {
		score = "high"
	}
	tags := r.Video.Tags[:min(len(r.Video.Tags), commonTagLimit)]
	return &Reference{
		Video:           r.Video,
		QualityScore:    score,
		EngagementRate:  r.Engagement.Rate,
		DurationMinutes: r.Insights.DurationMinutes,
		RecommendedTags: tags,
		Recommendations: []string{
			fmt.Sprintf("Match duration: ~%d min", int(r.Insights.DurationMinutes)),
			fmt.Sprintf("Aim for %.1f%%+ engagement", r.Engagement.Rate),
			fmt.Sprintf("Use relevant tags like: %s", strings.Join(tags[:min(len(tags), 5)], ", ")),
		},
	}, nil
}

func detailsFrom(v *youtube.Video) VideoDetails {
	d := VideoDetails{ID: v.Id}
	if s := v.Snippet; s != nil {
		d.Title = s.Title
		d.Description = s.Description
		d.Channel = s.ChannelTitle
		d.PublishedAt = s.PublishedAt
		d.Tags = s.Tags
		d.CategoryID = s.CategoryId
		if s.Thumbnails != nil && s.Thumbnails.High != nil {
			d.ThumbnailURL = s.Thumbnails.High.Url
		}
	}
	if cd := v.ContentDetails; cd != nil {
		d.Duration = cd.Duration
	}
	if st := v.Statistics; st != nil {
		d.Views = st.ViewCount
		d.Likes = st.LikeCount
		d.Comments = st.CommentCount
	}
	return d
}

// Quality scores a video's engagement. Rates are percentages; a video
// with no views counts as one view.
func Quality(d VideoDetails) QualityReport {
	views := max(d.Views, 1)
	rate := round2(float64(d.Likes+d.Comments) / float64(views) * 100)

	potential := "low"
	switch {
	case rate > viralEngagement:
		potential = "high"
	case rate > highEngagementRate:
		potential = "medium"
	}

	desc := strings.ToLower(d.Description)
	return QualityReport{
		Video: d,
		Engagement: Engagement{
			Views:     views,
			Likes:     d.Likes,
			Comments:  d.Comments,
			Rate:      rate,
			LikeRatio: round2(float64(d.Likes) / float64(views) * 100),
		},
		Indicators: QualityIndicators{
			HighEngagement:  rate > highEngagementRate,
			HighLikes:       d.Likes > highLikes,
			ActiveCommunity: d.Comments > activeComments,
			ViralPotential:  potential,
		},
		Insights: ProductionInsights{
			DurationMinutes:   ParseDuration(d.Duration).Minutes(),
			TagCount:          len(d.Tags),
			DescriptionLength: len([]rune(d.Description)),
			HasLinks:          strings.Contains(desc, "http") || strings.Contains(desc, "youtube.com"),
		},
	}
}

// Compare averages engagement and duration, ranks shared tags and
// derives best practices from the high-engagement videos.
func Compare(reports []QualityReport) Comparison {
	c := Comparison{Count: len(reports)}
	if len(reports) == 0 {
		return c
	}

	var rate, minutes float64
	counts := make(map[string]int)
	var order []string
	for _, r := range reports {
		rate += r.Engagement.Rate
		minutes += r.Insights.DurationMinutes
		for _, tag := range r.Video.Tags {
			if counts[tag] == 0 {
				order = append(order, tag)
			}
			counts[tag]++
		}
	}
	n := float64(len(reports))
	c.AverageEngagementRate = round2(rate / n)
	c.AverageDurationMinutes = math.Round(minutes/n*10) / 10

	slices.SortStableFunc(order, func(a, b string) int { return cmp.Compare(counts[b], counts[a]) })
	c.CommonTags = order[:min(len(order), commonTagLimit)]
	c.BestPractices = bestPractices(reports)
	return c
}

func bestPractices(reports []QualityReport) []string {
	var strong []QualityReport
	for _, r := range reports {
		if r.Indicators.HighEngagement {
			strong = append(strong, r)
		}
	}
	if len(strong) == 0 {
		return nil
	}

	var desc, tags, minutes float64
	links := true
	for _, r := range strong {
		desc += float64(r.Insights.DescriptionLength)
		tags += float64(r.Insights.TagCount)
		minutes += r.Insights.DurationMinutes
		links = links && r.Insights.HasLinks
	}
	n := float64(len(strong))

	var practices []string
	if desc/n > detailedDescLength {
		practices = append(practices, "Use detailed descriptions (500+ characters)")
	}
	if links {
		practices = append(practices, "Include links in description (CTA)")
	}
	if tags/n > manyTags {
		practices = append(practices, fmt.Sprintf("Use %d+ relevant tags", int(tags/n)))
	}
	practices = append(practices, fmt.Sprintf("Optimal duration: %d minutes", int(minutes/n)))
	return practices
}

var isoDuration = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// ParseDuration reads the ISO 8601 durations the Data API reports, such
// as PT1H2M3S or P1DT2H. Anything else is zero.
func ParseDuration(iso string) time.Duration {
	m := isoDuration.FindStringSubmatch(iso)
	if m == nil {
		return 0
	}
	units := []time.Duration{24 * time.Hour, time.Hour, time.Minute, time.Second}
	var d time.Duration
	for i, unit := range units {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return 0
		}
		d += time.Duration(n) * unit
	}
	return d
}

var videoURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`youtube\.com/watch\?(?:.*&)?v=([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`youtu\.be/([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/(?:shorts|embed|live)/([A-Za-z0-9_-]{11})`),
}

// VideoIDFromURL extracts the 11 character video id from a YouTube link.
func VideoIDFromURL(url string) (string, bool) {
	for _, re := range videoURLPatterns {
		if m := re.FindStringSubmatch(url); m != nil {
			return m[1], true
		}
	}
	return "", false
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
