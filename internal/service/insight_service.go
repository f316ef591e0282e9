package service

import (
	"bytes"
	"cbt_backend/internal/config"
	"cbt_backend/internal/model"
	"cbt_backend/internal/util"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	insightFailureThreshold = 3
	insightCooldown         = time.Minute
	insightTimeout          = 15 * time.Second
)

// InsightService asks an external OpenAI-compatible model for a short
// performance summary of a finished attempt. The upstream is optional and
// flaky by nature, so calls run behind a small circuit breaker: after three
// consecutive failures the breaker opens for a minute and callers get
// ErrInsightUnavailable immediately.
type InsightService struct {
	Attempts *AttemptService
	cfg      config.AIConfig
	client   *http.Client
	log      *zap.Logger

	mu        sync.Mutex
	failures  int
	openUntil time.Time
}

func NewInsightService(attempts *AttemptService, cfg config.AIConfig, log *zap.Logger) *InsightService {
	return &InsightService{
		Attempts: attempts,
		cfg:      cfg,
		client:   &http.Client{Timeout: insightTimeout},
		log:      log,
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate produces the insight text for one terminal attempt.
func (s *InsightService) Generate(userID uint, role model.UserRole, attemptID string) (string, error) {
	detail, err := s.Attempts.GetDetail(userID, role, attemptID)
	if err != nil {
		return "", err
	}
	if !detail.Attempt.Status.Terminal() {
		return "", util.ErrStateConflict
	}

	if s.cfg.BaseURL == "" || s.cfg.APIKey == "" {
		return "", util.ErrInsightUnavailable
	}
	if !s.allow() {
		return "", util.ErrInsightUnavailable
	}

	text, err := s.complete(buildPrompt(detail))
	if err != nil {
		s.recordFailure()
		if s.log != nil {
			s.log.Warn("insight generation failed", zap.String("attemptId", attemptID), zap.Error(err))
		}
		return "", util.ErrInsightUnavailable
	}
	s.recordSuccess()
	return text, nil
}

func (s *InsightService) allow() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Now().After(s.openUntil)
}

func (s *InsightService) recordFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures++
	if s.failures >= insightFailureThreshold {
		s.openUntil = time.Now().Add(insightCooldown)
		s.failures = 0
	}
}

func (s *InsightService) recordSuccess() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = 0
}

func (s *InsightService) complete(prompt string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: s.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a tutor reviewing a multiple-choice test attempt. Reply with two or three sentences of feedback."},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}

	url := strings.TrimRight(s.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("insight upstream returned %d", resp.StatusCode)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("insight upstream returned no choices")
	}
	return out.Choices[0].Message.Content, nil
}

func buildPrompt(detail *AttemptDetail) string {
	var b strings.Builder
	score := 0.0
	if detail.Attempt.ScorePercent != nil {
		score = *detail.Attempt.ScorePercent
	}
	fmt.Fprintf(&b, "The candidate scored %.1f%% in %s mode.\n", score, detail.Attempt.Mode)
	for _, a := range detail.Answers {
		state := "skipped"
		if a.IsCorrect != nil {
			if *a.IsCorrect {
				state = "correct"
			} else {
				state = "incorrect"
			}
		}
		fmt.Fprintf(&b, "Q%d (%s): %s\n", a.PresentedOrder, state, a.Text)
	}
	return b.String()
}
