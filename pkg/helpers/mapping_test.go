package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnflow/learnflow-auth/pkg/mailer"
)

func TestNormalizeEmailJob(t *testing.T) {
	job := &mailer.EmailJob{To: " ada@example.com ", Template: "Welcome"}
	require.NoError(t, NormalizeEmailJob(job))
	assert.Equal(t, "ada@example.com", job.To)
	assert.Equal(t, "welcome", job.Template)
	assert.Equal(t, "ada@example.com", job.Data["Email"])
}

func TestNormalizeEmailJob_KeepsExplicitEmail(t *testing.T) {
	job := &mailer.EmailJob{To: "a@example.com", Template: "role_elevated", Data: map[string]any{"Email": "b@example.com"}}
	require.NoError(t, NormalizeEmailJob(job))
	assert.Equal(t, "b@example.com", job.Data["Email"])
}

func TestNormalizeEmailJob_Rejects(t *testing.T) {
	cases := map[string]*mailer.EmailJob{
		"no recipient":     {Template: "welcome"},
		"unknown template": {To: "a@example.com", Template: "login_otp"},
		"empty raw body":   {To: "a@example.com", Subject: "hi"},
	}
	for name, job := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, NormalizeEmailJob(job))
		})
	}
}

func TestNormalizeEmailJob_RawBody(t *testing.T) {
	job := &mailer.EmailJob{To: "a@example.com", Subject: "hi", Text: "hello"}
	assert.NoError(t, NormalizeEmailJob(job))
}
