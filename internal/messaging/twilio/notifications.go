package twilio

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/template"
)

type NotificationKind string

const (
	EvaluationSubmitted   NotificationKind = "evaluation_submitted"
	EvaluationApproved    NotificationKind = "evaluation_approved"
	InternshipOpportunity NotificationKind = "internship_opportunity"
	WeeklyCheckin         NotificationKind = "weekly_checkin"
	SupervisorAlert       NotificationKind = "supervisor_alert"
	TrainingReminder      NotificationKind = "training_reminder"
	DocumentReady         NotificationKind = "document_ready"
)

var notificationTemplates = map[NotificationKind]string{
	EvaluationSubmitted: `🔔 *Performance Evaluation*

Hello {{.employee_name}},

Your performance evaluation has been submitted for approval.

*Overall Score:* {{.score}}/10
*Status:* Pending Manager Approval

You will be notified once approved.`,

	EvaluationApproved: `✅ *Evaluation Approved*

Hello {{.employee_name}},

Your performance evaluation has been approved!

*Overall Score:* {{.score}}/10
*Recommendation:* {{.recommendation}}

View details in your HR portal.`,

	InternshipOpportunity: `🎓 *New Internship Opportunity*

Hello {{.student_name}},

A matching internship has been found for you!

*Company:* {{.company_name}}
*Domain:* {{.domain}}
*Duration:* {{.duration}}
*Match Score:* {{.match_score}}%

Reply with 'INTERESTED' to learn more.`,

	WeeklyCheckin: `📋 *Weekly Progress Check-in*

Hello {{.student_name}},

How is your internship at {{.company_name}} going this week?

Please share:
1. What you worked on
2. Any challenges
3. What you learned

Reply with your update.`,

	SupervisorAlert: `⚠️ *Supervisor Alert*

Student {{.student_name}} needs attention:

*Issue:* {{.issue}}
*Internship:* {{.company_name}}
*Risk Level:* {{.risk_level}}

Please follow up promptly.`,

	TrainingReminder: `📚 *Training Reminder*

Hello {{.employee_name}},

Upcoming training session:

*Course:* {{.course_name}}
*Date:* {{.date}}
*Duration:* {{.duration}}

Don't forget to attend!`,

	DocumentReady: `📄 *Document Ready*

Hello {{.recipient_name}},

Your {{.document_type}} is ready!

{{.document_description}}

Download: {{.document_url}}`,
}

const defaultNotification = `*Notification*

{{.message}}`

// NotificationKinds lists the kinds with a dedicated template.
func NotificationKinds() []NotificationKind {
	return []NotificationKind{
		EvaluationSubmitted, EvaluationApproved, InternshipOpportunity,
		WeeklyCheckin, SupervisorAlert, TrainingReminder, DocumentReady,
	}
}

// RenderNotification fills the template of kind with data. Unknown kinds use a
// generic template that only needs "message". A placeholder without a value in
// data is an error.
func RenderNotification(kind NotificationKind, data map[string]any) (string, error) {
	text, ok := notificationTemplates[kind]
	if !ok {
		text = defaultNotification
	}

	tmpl, err := template.New(string(kind)).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse %s template: %w", kind, err)
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render %s notification: %w", kind, err)
	}
	return b.String(), nil
}

// SendNotification renders a notification and sends it.
func (c *Client) SendNotification(ctx context.Context, to string, kind NotificationKind, data map[string]any) (*SendResult, error) {
	body, err := RenderNotification(kind, data)
	if err != nil {
		return nil, err
	}
	return c.SendMessage(ctx, to, body, "")
}

// FormatMenu renders a numbered list of options.
func FormatMenu(title string, options []string) string {
	var b strings.Builder
	b.WriteString("*" + title + "*\n\n")
	for i, option := range options {
		b.WriteString(strconv.Itoa(i+1) + ". " + option + "\n")
	}
	b.WriteString("\nReply with the number of your choice.")
	return b.String()
}
