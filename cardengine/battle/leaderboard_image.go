package battle

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/projectklase/comunika-cards/cardengine/database/models"
)

//go:embed templates/leaderboard.html
var leaderboardTemplate string

// LeaderboardImageService renders the battle leaderboard to a PNG by
// screenshotting an HTML table in headless Chrome.
type LeaderboardImageService struct {
	logger *slog.Logger
	tmpl   *template.Template
}

type leaderboardRow struct {
	UserID     string
	Wins       int
	Losses     int
	WinRatePct int
}

type leaderboardData struct {
	Timestamp string
	Rows      []leaderboardRow
}

func NewLeaderboardImageService() (*LeaderboardImageService, error) {
	tmpl, err := template.New("leaderboard").Funcs(template.FuncMap{
		"add": func(a, b int) int { return a + b },
	}).Parse(leaderboardTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse leaderboard template: %w", err)
	}

	return &LeaderboardImageService{
		logger: slog.With(slog.String("service", "leaderboard_image")),
		tmpl:   tmpl,
	}, nil
}

// GenerateImage renders the given standings. At most the top 10 rows
// make it into the image.
func (s *LeaderboardImageService) GenerateImage(ctx context.Context, standings []*models.BattleStats) ([]byte, error) {
	start := time.Now()
	if len(standings) == 0 {
		return nil, fmt.Errorf("no leaderboard standings provided")
	}
	if len(standings) > 10 {
		standings = standings[:10]
	}

	rows := make([]leaderboardRow, len(standings))
	for i, stats := range standings {
		rows[i] = leaderboardRow{
			UserID:     stats.UserID,
			Wins:       stats.Wins,
			Losses:     stats.Losses,
			WinRatePct: int(math.Round(stats.WinRate * 100)),
		}
	}

	htmlContent, err := s.renderHTML(leaderboardData{
		Timestamp: time.Now().Format("15:04 MST"),
		Rows:      rows,
	})
	if err != nil {
		return nil, err
	}

	chromedpCtx, cancel := chromedp.NewContext(ctx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancel()
	chromedpCtx, cancel = context.WithTimeout(chromedpCtx, 15*time.Second)
	defer cancel()

	var imageBytes []byte
	err = chromedp.Run(chromedpCtx,
		chromedp.Navigate("data:text/html,"+htmlContent),
		chromedp.WaitVisible("#leaderboard-container", chromedp.ByID),
		chromedp.Sleep(500*time.Millisecond),
		chromedp.Screenshot("#leaderboard-container", &imageBytes, chromedp.ByID),
	)
	if err != nil {
		s.logger.Error("failed to generate leaderboard image",
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(start)))
		return nil, fmt.Errorf("failed to generate image: %w", err)
	}

	s.logger.Info("leaderboard image generated",
		slog.Int("rows", len(rows)),
		slog.Int("image_size", len(imageBytes)),
		slog.Duration("elapsed", time.Since(start)))
	return imageBytes, nil
}

func (s *LeaderboardImageService) renderHTML(data leaderboardData) (string, error) {
	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute leaderboard template: %w", err)
	}

	// The page is shipped as a data: URL; '#' would end it early.
	htmlContent := strings.ReplaceAll(buf.String(), "#", "%23")
	htmlContent = strings.ReplaceAll(htmlContent, "\n", "")
	return htmlContent, nil
}
