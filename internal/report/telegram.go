package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const defaultTelegramAPI = "https://api.telegram.org"

// Telegram posts run summaries to a chat through the Bot API.
type Telegram struct {
	endpoint string
	chatID   string
	client   *http.Client
	logger   zerolog.Logger
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type botResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

// NewTelegram builds a Telegram reporter. An empty baseURL means the public API.
func NewTelegram(botToken, chatID, baseURL string, timeout time.Duration, logger zerolog.Logger) *Telegram {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if baseURL == "" {
		baseURL = defaultTelegramAPI
	}

	return &Telegram{
		endpoint: fmt.Sprintf("%s/bot%s/sendMessage", strings.TrimRight(baseURL, "/"), botToken),
		chatID:   chatID,
		client:   &http.Client{Timeout: timeout},
		logger:   logger.With().Str("component", "report_telegram").Logger(),
	}
}

// Report sends an HTML-formatted summary of the run.
func (t *Telegram) Report(ctx context.Context, r Report) error {
	if err := t.send(ctx, renderMessage(r)); err != nil {
		return fmt.Errorf("telegram report %s: %w", r.Outcome.RunID, err)
	}
	t.logger.Info().Str("run_id", r.Outcome.RunID).Msg("report delivered")
	return nil
}

func (t *Telegram) send(ctx context.Context, text string) error {
	body, err := json.Marshal(sendMessageRequest{ChatID: t.chatID, Text: text, ParseMode: "HTML"})
	if err != nil {
		return err
	}

	// The endpoint embeds the bot token; url.Error text must not escape.
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.New("build request: invalid api base")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return fmt.Errorf("send request: %w", urlErr.Err)
		}
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	var res botResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&res)
	switch {
	case resp.StatusCode/100 != 2 && res.Description != "":
		return fmt.Errorf("status %d: %s", resp.StatusCode, res.Description)
	case resp.StatusCode/100 != 2:
		return fmt.Errorf("status %d", resp.StatusCode)
	case decodeErr != nil:
		return fmt.Errorf("decode response: %w", decodeErr)
	case !res.OK:
		return fmt.Errorf("api error %d: %s", res.ErrorCode, res.Description)
	}
	return nil
}

func renderMessage(r Report) string {
	o := r.Outcome
	lines := []string{
		fmt.Sprintf("<b>%s</b> %s", html.EscapeString(r.Label), html.EscapeString(r.Bond.String())),
		fmt.Sprintf("%s price <code>%s</code> ± %s", priceType(r.Bond.DirtyPrice), formatMoney(o.MeanPrice, 4), formatMoney(o.StdError, 4)),
		fmt.Sprintf("%d trials, %s, seed %d, %d ms", o.Trials, o.Mode, o.Seed, o.Elapsed.Milliseconds()),
		"compounding " + html.EscapeString(compoundingLabel(r.Bond)),
		fmt.Sprintf("run <code>%s</code>", o.RunID),
	}
	return strings.Join(lines, "\n")
}

var _ Reporter = (*Telegram)(nil)
