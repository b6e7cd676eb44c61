package service

import (
	"context"
	"errors"
	"testing"

	"github.com/banglehouse/bangles-backend/pkg/translate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTranslator struct {
	result translate.Result
	err    error
}

func (s stubTranslator) Translate(ctx context.Context, req translate.Request) (translate.Result, error) {
	return s.result, s.err
}

func TestTranslationService_Translate(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		svc := NewTranslationService(stubTranslator{result: translate.Result{Text: "चूड़ी", Cached: true}})

		res, err := svc.Translate(ctx, "Bangle", "en", "hi")
		require.NoError(t, err)
		assert.Equal(t, "चूड़ी", res.Text)
		assert.True(t, res.Cached)
	})

	t.Run("Upstream failure returns original text", func(t *testing.T) {
		svc := NewTranslationService(stubTranslator{err: errors.New("connection refused")})

		res, err := svc.Translate(ctx, "Bangle", "en", "hi")
		require.NoError(t, err)
		assert.Equal(t, "Bangle", res.Text)
		assert.False(t, res.Cached)
	})

	t.Run("Invalid request", func(t *testing.T) {
		svc := NewTranslationService(stubTranslator{err: translate.ErrInvalidRequest})

		_, err := svc.Translate(ctx, "Bangle", "", "hi")
		assert.ErrorIs(t, err, translate.ErrInvalidRequest)
	})
}
