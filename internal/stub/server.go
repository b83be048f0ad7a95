// Package stub is an in-memory scoring backend implementing the delivery
// contract, so the client can run end-to-end in tests and local development
// without the real service. Grading here is a simple answer-key comparison;
// the real backend's algorithm is opaque to the client either way.
package stub

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/linguaflow/delivery-client/internal/models"
	"github.com/linguaflow/delivery-client/internal/utils"
)

type sessionState struct {
	session models.TestSession
	answers []models.WireAnswer
	audio   map[string][]byte
}

type Server struct {
	mu       sync.Mutex
	tests    map[string]*models.Test
	sessions map[string]*sessionState
	logger   utils.Logger
}

func NewServer(logger utils.Logger, tests ...*models.Test) *Server {
	s := &Server{
		tests:    make(map[string]*models.Test),
		sessions: make(map[string]*sessionState),
		logger:   logger,
	}
	for _, t := range tests {
		s.tests[t.ID] = t
	}
	return s
}

// StartSession registers a new server-assigned session for the user.
func (s *Server) StartSession(userID, testID string) *models.TestSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	session := models.TestSession{
		ID:        uuid.NewString(),
		UserID:    userID,
		TestID:    testID,
		StartedAt: time.Now(),
	}
	s.sessions[session.ID] = &sessionState{
		session: session,
		audio:   make(map[string][]byte),
	}
	return &session
}

// Engine builds the HTTP surface. Mount it under httptest.NewServer in tests.
func (s *Server) Engine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(utils.LoggerMiddleware(s.logger))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/tests/:id/structure", s.getStructure)
		v1.GET("/parts/:id", s.getPartDetail)
		v1.GET("/groups/:id/questions", s.getGroupQuestions)
		v1.GET("/questions/:id/options", s.getQuestionOptions)

		v1.POST("/sessions/:id/answers", s.submitAnswers)
		v1.PATCH("/sessions/:id/finish", s.finishSession)
		v1.GET("/sessions/:id", s.getGradedSession)
		v1.POST("/sessions/:id/speaking", s.finishSpeaking)
	}

	return router
}

// ===== CONTENT ENDPOINTS =====

func (s *Server) getStructure(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	test, ok := s.tests[c.Param("id")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "test not found"})
		return
	}

	structure := models.TestStructure{
		TestID:   test.ID,
		Title:    test.Title,
		Skill:    test.Skill,
		Duration: test.Duration,
		AudioRef: test.AudioRef,
	}
	for _, p := range test.Parts {
		structure.Parts = append(structure.Parts, models.PartRef{ID: p.ID, Name: p.Name})
	}
	c.JSON(http.StatusOK, structure)
}

func (s *Server) getPartDetail(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	part := s.findPart(c.Param("id"))
	if part == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "part not found"})
		return
	}

	detail := models.PartDetail{
		ID:       part.ID,
		Name:     part.Name,
		Passage:  part.Passage,
		AudioRef: part.AudioRef,
		ImageRef: part.ImageRef,
	}
	for _, g := range part.Groups {
		detail.Groups = append(detail.Groups, models.GroupRef{
			ID:       g.ID,
			Type:     g.Type,
			Title:    g.Title,
			Quantity: g.Quantity,
			ImageRef: g.ImageRef,
		})
	}
	c.JSON(http.StatusOK, detail)
}

// getGroupQuestions returns questions with the answer key scrubbed; correct
// answers never leave the backend during an active attempt.
func (s *Server) getGroupQuestions(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	group := s.findGroup(c.Param("id"))
	if group == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "group not found"})
		return
	}

	questions := make([]models.Question, len(group.Questions))
	for i, q := range group.Questions {
		scrubbed := q
		scrubbed.CorrectAnswers = nil
		scrubbed.Options = nil
		questions[i] = scrubbed
	}
	c.JSON(http.StatusOK, questions)
}

func (s *Server) getQuestionOptions(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.findQuestion(c.Param("id"))
	if q == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "question not found"})
		return
	}

	options := make([]models.Option, len(q.Options))
	for i, opt := range q.Options {
		scrubbed := opt
		scrubbed.Correct = nil
		options[i] = scrubbed
	}
	c.JSON(http.StatusOK, options)
}

// ===== SESSION ENDPOINTS =====

func (s *Server) submitAnswers(c *gin.Context) {
	var req models.SubmitAnswersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.sessions[c.Param("id")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "session not found"})
		return
	}
	if state.session.Finished() {
		c.JSON(http.StatusConflict, gin.H{"message": "session already finished"})
		return
	}

	state.answers = req.Answers
	c.JSON(http.StatusOK, gin.H{"message": "answers accepted"})
}

func (s *Server) finishSession(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.sessions[c.Param("id")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "session not found"})
		return
	}
	if state.session.Finished() {
		c.JSON(http.StatusConflict, gin.H{"message": "session already finished"})
		return
	}

	test := s.tests[state.session.TestID]
	score := 0.0
	stored := make([]models.StoredAnswer, len(state.answers))
	for i, wire := range state.answers {
		correct := s.grade(test, wire)
		stored[i] = models.StoredAnswer{
			QuestionID: wire.QuestionID,
			Text:       wire.Text,
			Key:        wire.Key,
			Token:      wire.Token,
			Correct:    &correct,
		}
		if correct {
			score++
		}
	}

	now := time.Now()
	state.session.FinishedAt = &now
	state.session.Score = &score
	state.session.Answers = stored

	c.JSON(http.StatusOK, models.FinishSessionResponse{
		Score:      score,
		FinishedAt: now,
	})
}

func (s *Server) getGradedSession(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.sessions[c.Param("id")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "session not found"})
		return
	}
	if !state.session.Finished() {
		c.JSON(http.StatusConflict, gin.H{"message": "session not finished"})
		return
	}

	score := 0.0
	if state.session.Score != nil {
		score = *state.session.Score
	}
	c.JSON(http.StatusOK, models.GradedSession{
		SessionID:  state.session.ID,
		UserID:     state.session.UserID,
		Score:      score,
		FinishedAt: state.session.FinishedAt,
		Answers:    state.session.Answers,
		Structure:  s.tests[state.session.TestID],
	})
}

func (s *Server) finishSpeaking(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.sessions[c.Param("id")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "session not found"})
		return
	}

	for field, headers := range form.File {
		if !strings.HasPrefix(field, "part") || len(headers) == 0 {
			continue
		}
		file, err := headers[0].Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": fmt.Sprintf("cannot open %s", field)})
			return
		}
		blob, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": fmt.Sprintf("cannot read %s", field)})
			return
		}
		state.audio[field] = blob
	}

	c.JSON(http.StatusOK, gin.H{"message": "audio accepted", "parts": len(state.audio)})
}

// ReceivedAudio exposes uploaded blobs for test assertions.
func (s *Server) ReceivedAudio(sessionID string) map[string][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}
	out := make(map[string][]byte, len(state.audio))
	for k, v := range state.audio {
		out[k] = v
	}
	return out
}

// ===== GRADING =====

func (s *Server) grade(test *models.Test, wire models.WireAnswer) bool {
	if test == nil {
		return false
	}
	q, _ := test.Question(wire.QuestionID)
	if q == nil || len(q.CorrectAnswers) == 0 {
		return false
	}

	given := wire.Key
	if given == "" {
		given = wire.Token
	}
	if given == "" {
		given = wire.Text
	}
	given = strings.ToUpper(strings.TrimSpace(given))
	for _, want := range q.CorrectAnswers {
		if given == strings.ToUpper(strings.TrimSpace(want)) {
			return true
		}
	}
	return false
}

// ===== LOOKUPS =====

func (s *Server) findPart(partID string) *models.Part {
	for _, t := range s.tests {
		for i := range t.Parts {
			if t.Parts[i].ID == partID {
				return &t.Parts[i]
			}
		}
	}
	return nil
}

func (s *Server) findGroup(groupID string) *models.QuestionGroup {
	for _, t := range s.tests {
		for pi := range t.Parts {
			for gi := range t.Parts[pi].Groups {
				if t.Parts[pi].Groups[gi].ID == groupID {
					return &t.Parts[pi].Groups[gi]
				}
			}
		}
	}
	return nil
}

func (s *Server) findQuestion(questionID string) *models.Question {
	for _, t := range s.tests {
		if q, _ := t.Question(questionID); q != nil {
			return q
		}
	}
	return nil
}
