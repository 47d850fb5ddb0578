package notification

import (
	"fmt"
	"strings"
	"sync"
)

// Template defines a reusable notification template.
type Template struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	Subject string           `json:"subject"`
	Body    string           `json:"body"`
	Type    NotificationType `json:"type"`
}

// TemplateEngine manages notification templates and renders them with data.
type TemplateEngine struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewTemplateEngine creates a TemplateEngine with the clinic's built-in
// templates pre-registered. SMS variants carry an "-sms" suffix on the ID.
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{
		templates: make(map[string]*Template),
	}
	e.registerBuiltIn()
	return e
}

func (e *TemplateEngine) registerBuiltIn() {
	builtIn := []Template{
		{
			ID:      "appointment-reminder",
			Name:    "Appointment Reminder",
			Subject: "Appointment Reminder - Dr. {{doctor_name}}",
			Body: "Dear {{patient_name}},\n\n" +
				"This is a friendly reminder about your upcoming appointment:\n\n" +
				"Doctor: Dr. {{doctor_name}}\nSpecialty: {{specialty}}\n" +
				"Date & Time: {{datetime}}\nDuration: {{duration}} minutes\n" +
				"Appointment Type: {{type}}\n\n" +
				"Please arrive 15 minutes early for check-in. If you need to reschedule or cancel, " +
				"please call us at least 24 hours in advance.\n\n" +
				"We look forward to seeing you!\n\nBest regards,\n{{clinic_name}}",
			Type: TypeEmail,
		},
		{
			ID:      "appointment-reminder-urgent",
			Name:    "Appointment Reminder (Urgent)",
			Subject: "URGENT: Appointment Reminder - Dr. {{doctor_name}}",
			Body: "Dear {{patient_name}},\n\n" +
				"IMPORTANT: This is an urgent reminder about your upcoming appointment:\n\n" +
				"Doctor: Dr. {{doctor_name}}\nSpecialty: {{specialty}}\n" +
				"Date & Time: {{datetime}}\nDuration: {{duration}} minutes\n" +
				"Appointment Type: {{type}}\n\n" +
				"Please confirm your attendance by replying to this email or calling us immediately. " +
				"If you need to reschedule, please contact us as soon as possible so we can help other " +
				"patients who may need this time slot.\n\nBest regards,\n{{clinic_name}}",
			Type: TypeEmail,
		},
		{
			ID:   "appointment-reminder-sms",
			Name: "Appointment Reminder (SMS)",
			Body: "Reminder: Your appointment with Dr. {{doctor_last_name}} is on {{datetime}}. Reply YES to confirm.",
			Type: TypeSMS,
		},
		{
			ID:   "appointment-reminder-urgent-sms",
			Name: "Appointment Reminder (Urgent, SMS)",
			Body: "URGENT: Your appointment with Dr. {{doctor_last_name}} is on {{datetime}}. Please confirm by replying YES or call us to reschedule.",
			Type: TypeSMS,
		},
		{
			ID:      "appointment-confirmation",
			Name:    "Appointment Confirmation Request",
			Subject: "Please Confirm Your Appointment - Dr. {{doctor_name}}",
			Body: "Dear {{patient_name}},\n\n" +
				"Please confirm your appointment:\n\n" +
				"Doctor: Dr. {{doctor_name}}\nDate & Time: {{datetime}}\nDuration: {{duration}} minutes\n\n" +
				"Please reply to this email with \"CONFIRM\" to confirm your appointment, or \"CANCEL\" " +
				"if you need to cancel.\n\nThank you!\n\nBest regards,\n{{clinic_name}}",
			Type: TypeEmail,
		},
		{
			ID:   "appointment-confirmation-sms",
			Name: "Appointment Confirmation Request (SMS)",
			Body: "Please confirm your appointment with Dr. {{doctor_last_name}} on {{datetime}}. Reply YES to confirm or NO to cancel.",
			Type: TypeSMS,
		},
		{
			ID:      "appointment-cancellation",
			Name:    "Appointment Cancellation",
			Subject: "Appointment Cancelled - Dr. {{doctor_name}}",
			Body: "Dear {{patient_name}},\n\n" +
				"Your appointment with Dr. {{doctor_last_name}} on {{datetime}} has been cancelled.\n\n" +
				"{{reason_line}}Please call us to reschedule at your convenience.\n\n" +
				"Best regards,\n{{clinic_name}}",
			Type: TypeEmail,
		},
		{
			ID:   "appointment-cancellation-sms",
			Name: "Appointment Cancellation (SMS)",
			Body: "Your appointment with Dr. {{doctor_last_name}} has been cancelled. Please call us to reschedule.",
			Type: TypeSMS,
		},
		{
			ID:      "no-show-followup",
			Name:    "No-Show Follow-Up",
			Subject: "We Missed You - Reschedule Your Appointment",
			Body: "Dear {{patient_name}},\n\n" +
				"We noticed you missed your appointment with Dr. {{doctor_last_name}} on {{datetime}}.\n\n" +
				"We understand that things come up, and we're here to help. Please call us to reschedule " +
				"your appointment at your convenience.\n\n" +
				"Best regards,\n{{clinic_name}}",
			Type: TypeEmail,
		},
		{
			ID:   "no-show-followup-sms",
			Name: "No-Show Follow-Up (SMS)",
			Body: "We missed you at your appointment with Dr. {{doctor_last_name}}. Please call us to reschedule. We're here to help!",
			Type: TypeSMS,
		},
	}
	for i := range builtIn {
		t := builtIn[i]
		e.templates[t.ID] = &t
	}
}

// RegisterTemplate adds or replaces a template in the engine.
func (e *TemplateEngine) RegisterTemplate(t Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[t.ID] = &t
}

// Get returns a registered template by ID.
func (e *TemplateEngine) Get(templateID string) (*Template, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	t, ok := e.templates[templateID]
	return t, ok
}

// Render looks up a template by ID and performs {{key}} replacement using the
// supplied data map. Keys present in the template but absent from data are
// left as-is.
func (e *TemplateEngine) Render(templateID string, data map[string]string) (subject, body string, err error) {
	t, ok := e.Get(templateID)
	if !ok {
		return "", "", fmt.Errorf("template %q not found", templateID)
	}

	subject = t.Subject
	body = t.Body
	for k, v := range data {
		placeholder := "{{" + k + "}}"
		subject = strings.ReplaceAll(subject, placeholder, v)
		body = strings.ReplaceAll(body, placeholder, v)
	}
	return subject, body, nil
}
