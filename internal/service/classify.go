package service

import (
	"context"
	"fmt"
	"regexp"

	"pulsedesk.app/pulse/internal/model"
	"pulsedesk.app/pulse/internal/store"
)

// salesRegexp flags commercial and incident keywords. Fixed heuristic, not
// tunable at runtime.
var salesRegexp = regexp.MustCompile(`(?i)(tender|rfp|proposal|support|incident|sla|downtime|outage|bug|issue)`)

// Classification is the derived verdict for one event.
type Classification struct {
	Intent      model.Intent
	HasMention  bool
	SalesSignal bool
	IsFromTop   bool
}

type ClassifyService interface {
	Classify(ctx context.Context, event *model.Event) (Classification, error)
}

type classifyService struct {
	configTop store.ConfigTopStore
}

func NewClassifyService(configTop store.ConfigTopStore) ClassifyService {
	return &classifyService{configTop: configTop}
}

// Classify derives intent and signal flags for the event. Intent priority is
// strict: TOP_PING > DM > MENTION > OTHER.
func (s *classifyService) Classify(ctx context.Context, event *model.Event) (Classification, error) {
	var identities []string
	if event.AuthorID != nil && *event.AuthorID != "" {
		identities = append(identities, *event.AuthorID)
	}
	if event.AuthorName != nil && *event.AuthorName != "" {
		identities = append(identities, *event.AuthorName)
	}

	isFromTop, err := s.configTop.MatchesAny(ctx, event.Source, identities)
	if err != nil {
		return Classification{}, fmt.Errorf("matching top identities: %w", err)
	}

	hasMention := len(event.Mentions) > 0
	salesSignal := salesRegexp.MatchString(event.Body())

	var intent model.Intent
	switch {
	case isFromTop:
		intent = model.IntentTopPing
	case event.IsDM:
		intent = model.IntentDM
	case hasMention:
		intent = model.IntentMention
	default:
		intent = model.IntentOther
	}

	return Classification{
		Intent:      intent,
		HasMention:  hasMention,
		SalesSignal: salesSignal,
		IsFromTop:   isFromTop,
	}, nil
}
