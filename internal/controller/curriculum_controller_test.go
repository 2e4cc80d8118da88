package controller

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type curriculumBody struct {
	ID           string `json:"id"`
	TotalLessons int    `json:"totalLessons"`
	Source       string `json:"source"`
	Weeks        []struct {
		WeekNumber int `json:"weekNumber"`
		Lessons    []struct {
			ID           uint `json:"id"`
			LessonNumber int  `json:"lessonNumber"`
		} `json:"lessons"`
	} `json:"weeks"`
	Lessons []struct {
		ID           uint `json:"id"`
		LessonNumber int  `json:"lessonNumber"`
	} `json:"lessons"`
}

func TestCurriculumController_GenerateIsIdempotent(t *testing.T) {
	s := newTestServer(t)
	token := s.onboard("ana@example.com")

	w := s.do(http.MethodGet, "/api/curriculum", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, "/api/curriculum/generate", token, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var first curriculumBody
	decode(t, w, &first)
	assert.Equal(t, 8, first.TotalLessons)
	assert.Equal(t, "fallback", first.Source)
	require.Len(t, first.Lessons, 8)
	require.Len(t, first.Weeks, 4)
	for i, l := range first.Lessons {
		assert.Equal(t, i+1, l.LessonNumber)
	}
	for _, wk := range first.Weeks {
		assert.Len(t, wk.Lessons, 2)
	}

	w = s.do(http.MethodPost, "/api/curriculum/generate", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var second curriculumBody
	env := decode(t, w, &second)
	assert.Equal(t, "Curriculum already exists", env.Message)
	assert.Equal(t, first.ID, second.ID)

	w = s.do(http.MethodGet, "/api/curriculum", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stored curriculumBody
	decode(t, w, &stored)
	assert.Equal(t, first.ID, stored.ID)
	assert.Len(t, stored.Lessons, 8)
}

func TestCurriculumController_RequiresProfile(t *testing.T) {
	s := newTestServer(t)
	token := s.signup("ana@example.com")

	w := s.do(http.MethodPost, "/api/curriculum/generate", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/api/curriculum/intro", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCurriculumController_Introduction(t *testing.T) {
	s := newTestServer(t)
	token := s.onboard("ana@example.com")

	w := s.do(http.MethodGet, "/api/curriculum/intro", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		TutorName    string `json:"tutorName"`
		Personality  string `json:"personality"`
		Introduction string `json:"introduction"`
	}
	decode(t, w, &body)
	assert.Equal(t, "Amélie", body.TutorName)
	assert.Equal(t, "encouraging", body.Personality)
	assert.Contains(t, body.Introduction, "ana")
}
