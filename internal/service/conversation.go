package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vcscsvcscs/healthwise/apps/backend/pkg/model"
)

const (
	errorReplyMessage   = "I apologize, but I encountered an error processing your request. Please try rephrasing your question or contact support if the issue persists."
	imageAnalysisPrompt = "Image analysis request"
	maxRecentForPrompt  = 3
	maxRelatedHistory   = 2
)

var historyKeywords = []string{"history", "tracked", "logged", "pattern"}

// ChatTurnRequest is one user message, optionally with a file
type ChatTurnRequest struct {
	Content    string            `json:"content"`
	Attachment *model.Attachment `json:"attachment,omitempty"`
}

// ChatTurn is everything a single user message produced
type ChatTurn struct {
	SessionID        string               `json:"sessionId"`
	UserMessage      model.StoredMessage  `json:"userMessage"`
	AssistantMessage model.StoredMessage  `json:"assistantMessage"`
	FollowUpMessage  *model.StoredMessage `json:"followUpMessage,omitempty"`
	Mode             model.ResponseMode   `json:"mode,omitempty"`
	HistoryRequest   bool                 `json:"historyRequest"`
	Emergency        EmergencyGuidance    `json:"emergency"`
}

// TurnEvent is one step of a streamed turn. The last event has Done set and
// carries the turn, or Err when the turn could not be stored.
type TurnEvent struct {
	Delta string
	Done  bool
	Turn  *ChatTurn
	Err   error
}

// ConversationService runs the chat flow: it stores both sides of every turn,
// answers history requests from the symptom log and enriches replies with
// related tracker entries
type ConversationService struct {
	analyzer      *Analyzer
	responses     *ResponseService
	symptoms      *SymptomStore
	chats         *ChatStore
	emergency     *EmergencyScreener
	followUpDelay time.Duration
	logger        *zap.Logger
}

// NewConversationService creates a new ConversationService
func NewConversationService(
	analyzer *Analyzer,
	responses *ResponseService,
	symptoms *SymptomStore,
	chats *ChatStore,
	emergency *EmergencyScreener,
	followUpDelay time.Duration,
	logger *zap.Logger,
) *ConversationService {
	return &ConversationService{
		analyzer:      analyzer,
		responses:     responses,
		symptoms:      symptoms,
		chats:         chats,
		emergency:     emergency,
		followUpDelay: followUpDelay,
		logger:        logger,
	}
}

// EnsureSession returns the session the chat should open on: the current one,
// else the most recently active one, else a new one
func (s *ConversationService) EnsureSession(ctx context.Context) (model.ChatSession, error) {
	current, err := s.chats.CurrentSession(ctx)
	if err != nil {
		return model.ChatSession{}, err
	}
	if current != nil {
		return *current, nil
	}

	sessions, err := s.chats.AllSessions(ctx)
	if err != nil {
		return model.ChatSession{}, err
	}
	if len(sessions) > 0 {
		if err := s.chats.SetCurrent(ctx, sessions[0].ID); err != nil {
			return model.ChatSession{}, err
		}
		return sessions[0], nil
	}
	return s.chats.CreateSession(ctx)
}

// Send handles one user message and returns the stored turn. The follow-up
// message, when any, is stored immediately.
func (s *ConversationService) Send(ctx context.Context, req ChatTurnRequest) (*ChatTurn, error) {
	turn, err := s.begin(ctx, req)
	if err != nil {
		return nil, err
	}
	if turn.HistoryRequest {
		return turn, nil
	}

	plan, err := s.plan(ctx, req)
	if err != nil {
		return nil, s.fail(ctx, turn, err)
	}
	response := s.responses.Respond(ctx, plan.request)

	content := response.Content + plan.relatedHistory
	if err := s.finish(ctx, turn, plan, response, content); err != nil {
		return nil, err
	}
	if err := s.saveFollowUp(ctx, turn, response.FollowUpQuestions); err != nil {
		return nil, err
	}
	return turn, nil
}

// SendStreaming handles one user message, streaming the reply as it is
// produced. The user message is stored before the channel is returned; the
// reply and follow-up are stored as the stream completes. Cancelling ctx
// abandons the reply.
func (s *ConversationService) SendStreaming(ctx context.Context, req ChatTurnRequest) (<-chan TurnEvent, error) {
	turn, err := s.begin(ctx, req)
	if err != nil {
		return nil, err
	}

	out := make(chan TurnEvent)
	go func() {
		defer close(out)

		if turn.HistoryRequest {
			if sendEvent(ctx, out, TurnEvent{Delta: turn.AssistantMessage.Content}) {
				sendEvent(ctx, out, TurnEvent{Done: true, Turn: turn})
			}
			return
		}

		plan, err := s.plan(ctx, req)
		if err != nil {
			sendEvent(ctx, out, TurnEvent{Done: true, Err: s.fail(ctx, turn, err)})
			return
		}

		var response *model.Response
		for chunk := range s.responses.RespondStreaming(ctx, plan.request) {
			if chunk.Done {
				response = chunk.Response
				continue
			}
			if !sendEvent(ctx, out, TurnEvent{Delta: chunk.Content}) {
				break
			}
		}
		if response == nil || ctx.Err() != nil {
			s.logger.Info("chat stream abandoned", zap.String("session_id", turn.SessionID))
			return
		}

		if plan.relatedHistory != "" && !sendEvent(ctx, out, TurnEvent{Delta: plan.relatedHistory}) {
			return
		}
		if err := s.finish(ctx, turn, plan, *response, response.Content+plan.relatedHistory); err != nil {
			sendEvent(ctx, out, TurnEvent{Done: true, Err: err})
			return
		}

		if len(response.FollowUpQuestions) > 0 && s.followUpDelay > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.followUpDelay):
			}
		}
		if err := s.saveFollowUp(ctx, turn, response.FollowUpQuestions); err != nil {
			sendEvent(ctx, out, TurnEvent{Done: true, Err: err})
			return
		}
		sendEvent(ctx, out, TurnEvent{Done: true, Turn: turn})
	}()

	return out, nil
}

// LogSymptom records entry in the tracker and posts it into the chat
func (s *ConversationService) LogSymptom(ctx context.Context, entry model.SymptomEntry) (model.SymptomEntry, *ChatTurn, error) {
	saved, err := s.symptoms.Add(ctx, entry)
	if err != nil {
		return model.SymptomEntry{}, nil, err
	}

	var b strings.Builder
	b.WriteString("I just logged a symptom in my tracker:\n\n")
	fmt.Fprintf(&b, "**Symptom:** %s\n", saved.Symptom)
	fmt.Fprintf(&b, "**Severity:** %d/10\n", saved.Severity)
	fmt.Fprintf(&b, "**Time:** %s\n", saved.Timestamp.In(s.symptoms.location).Format("2006-01-02 15:04"))
	if len(saved.Triggers) > 0 {
		fmt.Fprintf(&b, "**Triggers:** %s\n", strings.Join(saved.Triggers, ", "))
	}
	if saved.Notes != "" {
		fmt.Fprintf(&b, "**Notes:** %s\n", saved.Notes)
	}
	b.WriteString("\nCan you provide recommendations for this symptom and check if there are any patterns with my previous entries?")

	turn, err := s.Send(ctx, ChatTurnRequest{Content: b.String()})
	if err != nil {
		return saved, nil, err
	}
	return saved, turn, nil
}

// ShowHistory asks the assistant to review the symptom log
func (s *ConversationService) ShowHistory(ctx context.Context) (*ChatTurn, error) {
	summary, err := s.symptoms.SummaryForChat(ctx)
	if err != nil {
		return nil, err
	}
	return s.Send(ctx, ChatTurnRequest{
		Content: "Please analyze my symptom history and identify any patterns, trends, or insights:\n\n" + summary,
	})
}

// begin validates and stores the user message. History requests are answered
// right away from the symptom log.
func (s *ConversationService) begin(ctx context.Context, req ChatTurnRequest) (*ChatTurn, error) {
	if strings.TrimSpace(req.Content) == "" && req.Attachment == nil {
		return nil, fmt.Errorf("%w: content or attachment is required", ErrInvalidMessage)
	}

	session, err := s.chats.SaveMessage(ctx, model.StoredMessage{
		Content: req.Content,
		Role:    model.MessageRoleUser,
	})
	if err != nil {
		return nil, err
	}
	turn := &ChatTurn{
		SessionID:   session.ID,
		UserMessage: session.Messages[len(session.Messages)-1],
		Emergency:   EmergencyGuidance{Level: EmergencyLevelNone},
	}

	if req.Attachment != nil || !isHistoryRequest(req.Content) {
		return turn, nil
	}

	turn.HistoryRequest = true
	summary, err := s.symptoms.SummaryForChat(ctx)
	if err != nil {
		return nil, s.fail(ctx, turn, err)
	}
	reply, err := s.saveAssistant(ctx, model.StoredMessage{
		Content: fmt.Sprintf("Here's your symptom tracking history:\n\n%s\n\nBased on this data, I can provide more targeted recommendations. Would you like me to analyze any specific patterns or suggest remedies for your most common symptoms?", summary),
	})
	if err != nil {
		return nil, err
	}
	turn.AssistantMessage = reply
	return turn, nil
}

type turnPlan struct {
	input          model.ProcessedInput
	request        ResponseRequest
	severity       int
	relatedHistory string
}

// plan analyzes the message and gathers the history context for the reply
func (s *ConversationService) plan(ctx context.Context, req ChatTurnRequest) (turnPlan, error) {
	text := req.Content
	if text == "" {
		text = imageAnalysisPrompt
	}
	input := s.analyzer.Analyze(text)

	recent, err := s.symptoms.Recent(ctx, summaryDays)
	if err != nil {
		return turnPlan{}, err
	}

	lines := make([]string, 0, maxRecentForPrompt)
	for _, e := range headOf(recent, maxRecentForPrompt) {
		lines = append(lines, s.describeEntry(e))
	}

	plan := turnPlan{
		input: input,
		request: ResponseRequest{
			Input:          input,
			RecentSymptoms: strings.Join(lines, ", "),
			Attachment:     req.Attachment,
		},
		severity: input.Intent.Entities.Severity.Proxy(),
	}
	if req.Attachment == nil && input.Intent.Type == model.IntentSymptom {
		plan.relatedHistory = s.relatedHistory(recent, input.Intent.Entities.Symptoms)
	}
	return plan, nil
}

// relatedHistory renders the appendix listing recent entries that mention an
// extracted symptom, or "" when none do
func (s *ConversationService) relatedHistory(recent []model.SymptomEntry, symptoms []string) string {
	var related []model.SymptomEntry
	for _, e := range recent {
		logged := strings.ToLower(e.Symptom)
		for _, symptom := range symptoms {
			if strings.Contains(logged, strings.ToLower(symptom)) {
				related = append(related, e)
				break
			}
		}
	}
	if len(related) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n\n**Based on your symptom history:**\nI notice you've logged similar symptoms before. Your recent entries show:\n")
	for _, e := range headOf(related, maxRelatedHistory) {
		fmt.Fprintf(&b, "• %s\n", s.describeEntry(e))
	}
	b.WriteString("\nThis pattern information helps me provide more personalized recommendations.")
	return b.String()
}

func (s *ConversationService) describeEntry(e model.SymptomEntry) string {
	return fmt.Sprintf("%s (%d/10) on %s", e.Symptom, e.Severity, s.symptoms.formatDate(e.Timestamp))
}

// finish stores the assistant reply and fills in the screening result
func (s *ConversationService) finish(ctx context.Context, turn *ChatTurn, plan turnPlan, response model.Response, content string) error {
	severity := plan.severity
	symptoms := plan.input.Intent.Entities.Symptoms

	reply, err := s.saveAssistant(ctx, model.StoredMessage{
		Content:           content,
		Recommendations:   response.Recommendations,
		EmergencySymptoms: symptoms,
		Severity:          &severity,
	})
	if err != nil {
		return err
	}

	turn.AssistantMessage = reply
	turn.Mode = response.Mode
	turn.Emergency = s.emergency.Screen(symptoms, severity)
	if turn.Emergency.Level != EmergencyLevelNone {
		s.logger.Warn("emergency symptoms detected",
			zap.String("session_id", turn.SessionID),
			zap.String("level", string(turn.Emergency.Level)),
			zap.Strings("matched", turn.Emergency.Matched),
		)
	}
	return nil
}

func (s *ConversationService) saveFollowUp(ctx context.Context, turn *ChatTurn, questions []string) error {
	if len(questions) == 0 {
		return nil
	}
	lines := make([]string, len(questions))
	for i, q := range questions {
		lines[i] = fmt.Sprintf("%d. %s", i+1, q)
	}
	msg, err := s.saveAssistant(ctx, model.StoredMessage{
		Content: "**Follow-up questions to help me provide better recommendations:**\n\n" + strings.Join(lines, "\n"),
	})
	if err != nil {
		return err
	}
	turn.FollowUpMessage = &msg
	return nil
}

func (s *ConversationService) saveAssistant(ctx context.Context, msg model.StoredMessage) (model.StoredMessage, error) {
	msg.Role = model.MessageRoleAssistant
	session, err := s.chats.SaveMessage(ctx, msg)
	if err != nil {
		return model.StoredMessage{}, err
	}
	return session.Messages[len(session.Messages)-1], nil
}

// fail stores the apology reply after a processing error and returns cause
func (s *ConversationService) fail(ctx context.Context, turn *ChatTurn, cause error) error {
	s.logger.Error("failed to process chat message",
		zap.String("session_id", turn.SessionID),
		zap.Error(cause),
	)
	if _, err := s.saveAssistant(ctx, model.StoredMessage{Content: errorReplyMessage}); err != nil {
		s.logger.Error("failed to store error reply", zap.Error(err))
	}
	return fmt.Errorf("failed to process message: %w", cause)
}

func isHistoryRequest(content string) bool {
	lower := strings.ToLower(content)
	for _, keyword := range historyKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

func sendEvent(ctx context.Context, out chan<- TurnEvent, e TurnEvent) bool {
	select {
	case out <- e:
		return true
	case <-ctx.Done():
		return false
	}
}
