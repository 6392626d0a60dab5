package service

import (
	"fmt"
	"strings"

	"app/internal/model"
)

// Personas. Session creation only accepts the first three; Mentor exists in
// the prompt layer for rows written outside the creation path.
const (
	PersonaHR        = "HR"
	PersonaTechnical = "Technical"
	PersonaManager   = "Manager"
	PersonaMentor    = "Mentor"
)

// CreatablePersonas are the values the creation endpoint accepts.
var CreatablePersonas = []string{PersonaHR, PersonaTechnical, PersonaManager}

const systemBase = `You are conducting a structured mock interview. Ask exactly one question at a time.
Keep each question to 2-4 sentences. If the candidate's answer is vague, ask one targeted follow-up next turn.
Keep the interview to eight total questions. Be professional and respectful.
Avoid personal or confidential information. Do not invent company-specific facts.`

var personaPrompts = map[string]string{
	PersonaHR:        `Focus on behavioral and culture fit using the STAR approach.`,
	PersonaTechnical: `Focus on problem solving, trade-offs, debugging, and high-level design.`,
	PersonaManager:   `Focus on leadership, stakeholder management, prioritization, conflict resolution, and delivery.`,
	PersonaMentor:    `Act like a supportive mentor. Ask reflective questions, then offer a brief coaching tip after each candidate answer.`,
}

const (
	firstTurnPrompt = `Start the interview now with a strong opening question. Ask one question only.`
	nextTurnPrompt  = `Continue the interview. Ask one question only. If we're at the final question, wrap up politely.`
)

const evaluatorPrompt = `You are an interview answer evaluator. Score from 1-5 on:
1) Relevance, 2) STAR structure, 3) Specifics & Evidence, 4) Reasoning & Trade-offs, 5) Clarity & Brevity, 6) Role Fit.

Return JSON with:
{
 "scores": { "relevance": n, "star": n, "specifics": n, "reasoning": n, "clarity": n, "roleFit": n },
 "overallScore": n,
 "briefFeedback": "<=60 words",
 "improvedAnswer": "<=120 words"
}
Be concise and do not invent facts.`

const coachingPrompt = `Return a concise coaching tip in <= 40 words to improve the candidate's last answer.
Output strictly as JSON:
{"tip":"..."}`

const jdExtractorPrompt = `From this job description, extract JSON:
{
  "competencies": ["..."],
  "skillsKeywords": ["..."],
  "responsibilities": ["..."],
  "communicationStyleHint": "..."
}
Only use information present in the JD.`

const summaryInstruction = `Summarize the interview in under 200 words. Provide:
- Two strengths
- Two weaknesses
- Three practical improvement tips
- Rewrite one weak answer in a stronger form

Transcript:
`

// fallbackQuestions is the canned question bank used whenever the generator
// is unavailable. It is the resilience boundary of the turn loop, so it must
// work with zero external dependencies.
var fallbackQuestions = map[string][]string{
	PersonaHR: {
		`Tell me about a time you had to handle a tight deadline. What was the situation and result?`,
		`Describe a conflict with a teammate and how you resolved it.`,
		`What accomplishment are you most proud of and why?`,
	},
	PersonaTechnical: {
		`Walk me through a recent system you designed. What were the key trade-offs?`,
		`Describe a tough bug you debugged. How did you isolate the root cause?`,
		`How would you design a rate limiter for a public API?`,
	},
	PersonaManager: {
		`Tell me about a time you aligned stakeholders with conflicting priorities.`,
		`Describe how you handle underperformance on your team.`,
		`How do you set goals and measure success for a new initiative?`,
	},
	PersonaMentor: {
		`Reflect on a recent challenge you faced. What options did you consider, and what did you learn?`,
		`Tell me about a time feedback changed your approach. What would you do differently now?`,
		`Describe a decision you agonized over. How did you weigh trade-offs, and what was the outcome?`,
	},
}

const genericSummary = `You completed the interview. Strengths: structure, clarity. Improve: quantify outcomes, deepen role-specific examples. Next: prepare 2-3 STAR stories with metrics.`

// resolvePersona maps unknown persona values to HR, mirroring the lenient
// read path of the original application.
func resolvePersona(p string) string {
	if _, ok := personaPrompts[p]; ok {
		return p
	}
	return PersonaHR
}

// fallbackQuestion indexes the persona bank by turn counter, clamped to the
// last entry so deep sessions still get a deterministic question.
func fallbackQuestion(persona string, turn int) string {
	bank, ok := fallbackQuestions[persona]
	if !ok {
		bank = fallbackQuestions[PersonaHR]
	}
	idx := turn
	if idx >= len(bank) {
		idx = len(bank) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return bank[idx]
}

// companyRoleBlock renders the role-context section of the system prompt.
// Competency and keyword lists are bounded to keep the prompt short.
func companyRoleBlock(companyName, roleTitle *string, profile *model.RoleProfile) string {
	company := "Not specified"
	if companyName != nil && *companyName != "" {
		company = *companyName
	}
	role := "Not specified"
	if roleTitle != nil && *roleTitle != "" {
		role = *roleTitle
	}
	var competencies, keywords []string
	style := "professional and concise"
	if profile != nil {
		competencies = capList(profile.Competencies, 7)
		keywords = capList(profile.SkillsKeywords, 10)
		if profile.CommunicationStyleHint != "" {
			style = profile.CommunicationStyleHint
		}
	}
	return fmt.Sprintf(`Company & Role Context
Company: %s
Role: %s
Competencies: %s
Skills keywords: %s
Communication style: %s

Instructions:
- Tailor questions and feedback to this context and style.
- Do not invent unknown or confidential company specifics.`,
		company, role, strings.Join(competencies, ", "), strings.Join(keywords, ", "), style)
}

func capList(items []string, max int) []string {
	if len(items) > max {
		return items[:max]
	}
	return items
}

// neutralEvaluation is the fixed mid-scale record returned when the
// generator fails or produces nothing parseable. Scoring must never block
// the turn loop.
func neutralEvaluation() *model.EvaluationRecord {
	return &model.EvaluationRecord{
		Scores: model.EvaluationScores{
			Relevance: 3, Star: 3, Specifics: 3, Reasoning: 3, Clarity: 3, RoleFit: 3,
		},
		OverallScore:   3,
		BriefFeedback:  `Reasonably clear. Add more specifics, structure with STAR, and highlight measurable impact.`,
		ImprovedAnswer: `Briefly describe the Situation and Task, your specific Actions, and the Result with metrics. Emphasize trade-offs and role-relevant skills.`,
	}
}
