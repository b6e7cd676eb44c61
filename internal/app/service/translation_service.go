package service

import (
	"context"
	"errors"

	"github.com/banglehouse/bangles-backend/pkg/logger"
	"github.com/banglehouse/bangles-backend/pkg/translate"
)

// Translator is the part of translate.Client the service needs.
type Translator interface {
	Translate(ctx context.Context, req translate.Request) (translate.Result, error)
}

type TranslationService interface {
	// Translate never fails on upstream errors: the original text comes back
	// instead. Only malformed requests return an error.
	Translate(ctx context.Context, text, source, target string) (translate.Result, error)
}

type translationService struct {
	translator Translator
}

func NewTranslationService(translator Translator) TranslationService {
	return &translationService{translator: translator}
}

func (s *translationService) Translate(ctx context.Context, text, source, target string) (translate.Result, error) {
	res, err := s.translator.Translate(ctx, translate.Request{
		Text:   text,
		Source: source,
		Target: target,
	})
	if err != nil {
		if errors.Is(err, translate.ErrInvalidRequest) {
			return translate.Result{}, err
		}
		logger.Error("Translation failed, returning original text", err, map[string]interface{}{
			"source": source,
			"target": target,
			"length": len(text),
		})
		return translate.Result{Text: text}, nil
	}
	return res, nil
}
