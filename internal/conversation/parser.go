// Package conversation turns typed commands into intents and prints
// notifications back to the user.
package conversation

import (
	"context"
	"regexp"
	"strings"

	"github.com/hammamikhairi/focustrack/internal/domain"
	"github.com/hammamikhairi/focustrack/internal/logger"
)

// Compile-time interface check.
var _ domain.IntentParser = (*KeywordParser)(nil)

// KeywordParser matches user input to intents using keywords and simple patterns.
type KeywordParser struct {
	log      *logger.Logger
	patterns []patternRule
	args     []argRule
}

type patternRule struct {
	regex   *regexp.Regexp
	intent  domain.IntentType
	payload string
}

// argRule matches "<keyword> <rest>" and carries rest as the payload.
type argRule struct {
	regex  *regexp.Regexp
	intent domain.IntentType
}

// NewKeywordParser creates a keyword-based intent parser.
func NewKeywordParser(log *logger.Logger) *KeywordParser {
	p := &KeywordParser{log: log}
	p.patterns = []patternRule{
		{regex: regexp.MustCompile(`(?i)^(start|go|s|resume|begin)$`), intent: domain.IntentStart},
		{regex: regexp.MustCompile(`(?i)^(pause|p|stop|hold)$`), intent: domain.IntentPause},
		{regex: regexp.MustCompile(`(?i)^(toggle|space|t)$`), intent: domain.IntentToggle},
		{regex: regexp.MustCompile(`(?i)^(reset|r|restart)$`), intent: domain.IntentReset},
		{regex: regexp.MustCompile(`(?i)^(focus|f|work|pomodoro)$`), intent: domain.IntentSelectMode, payload: domain.ModeFocus.String()},
		{regex: regexp.MustCompile(`(?i)^(short|sb|break|short[ _-]?break)$`), intent: domain.IntentSelectMode, payload: domain.ModeShortBreak.String()},
		{regex: regexp.MustCompile(`(?i)^(long|lb|long[ _-]?break)$`), intent: domain.IntentSelectMode, payload: domain.ModeLongBreak.String()},
		{regex: regexp.MustCompile(`(?i)^(status|where|info|time)$`), intent: domain.IntentStatus},
		{regex: regexp.MustCompile(`(?i)^(settings|config|prefs)$`), intent: domain.IntentSettings},
		{regex: regexp.MustCompile(`(?i)^(history|log|sessions|stats)$`), intent: domain.IntentHistory},
		{regex: regexp.MustCompile(`(?i)^(help|h|\?)$`), intent: domain.IntentHelp},
		{regex: regexp.MustCompile(`(?i)^(quit|exit|q|bye)$`), intent: domain.IntentQuit},
		// Bare keywords clear the field.
		{regex: regexp.MustCompile(`(?i)^tag$`), intent: domain.IntentSelectTag},
		{regex: regexp.MustCompile(`(?i)^task$`), intent: domain.IntentSelectTask},
		{regex: regexp.MustCompile(`(?i)^mood$`), intent: domain.IntentSelectMood},
	}
	p.args = []argRule{
		{regexp.MustCompile(`(?i)^mode\s+(.+)$`), domain.IntentSelectMode},
		{regexp.MustCompile(`(?i)^tag\s+#?(.+)$`), domain.IntentSelectTag},
		{regexp.MustCompile(`(?i)^task\s+(.+)$`), domain.IntentSelectTask},
		{regexp.MustCompile(`(?i)^mood\s+(.+)$`), domain.IntentSelectMood},
		{regexp.MustCompile(`(?i)^set\s+(\S+\s+\S+)$`), domain.IntentSetSetting},
	}
	return p
}

// Parse converts user input into an intent. A line of only spaces toggles
// the timer, like hitting the space bar.
func (p *KeywordParser) Parse(ctx context.Context, input string) (*domain.Intent, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		if strings.Contains(input, " ") {
			return &domain.Intent{Type: domain.IntentToggle}, nil
		}
		return &domain.Intent{Type: domain.IntentUnknown}, nil
	}

	p.log.Debug("parsing input: %q", trimmed)

	for _, rule := range p.patterns {
		if rule.regex.MatchString(trimmed) {
			p.log.Debug("matched intent: %s", rule.intent)
			return &domain.Intent{Type: rule.intent, Payload: rule.payload}, nil
		}
	}

	for _, rule := range p.args {
		m := rule.regex.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		payload := strings.TrimSpace(m[1])
		if rule.intent == domain.IntentSelectMode {
			mode, err := domain.ParseMode(payload)
			if err != nil {
				return &domain.Intent{Type: domain.IntentUnknown, Payload: trimmed}, nil
			}
			payload = mode.String()
		}
		if rule.intent == domain.IntentSetSetting {
			payload = strings.Join(strings.Fields(payload), " ")
		}
		p.log.Debug("matched intent: %s (%q)", rule.intent, payload)
		return &domain.Intent{Type: rule.intent, Payload: payload}, nil
	}

	p.log.Debug("no match, returning unknown intent")
	return &domain.Intent{Type: domain.IntentUnknown, Payload: trimmed}, nil
}
