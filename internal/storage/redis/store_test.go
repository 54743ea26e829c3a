package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_InvalidURL(t *testing.T) {
	_, err := New(context.Background(), "not-a-url://")
	assert.ErrorContains(t, err, "parsing redis URL")
}

func TestStore_Key(t *testing.T) {
	s := &Store{prefix: DefaultPrefix}
	assert.Equal(t, "reflexio:llm:abc", s.key("abc"))
}
