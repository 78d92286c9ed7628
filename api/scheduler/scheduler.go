// Package scheduler runs the background jobs for the roster service,
// currently the scheduled morning report email.
package scheduler

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/shakerpd/jail-roster-api/databases"
	"github.com/shakerpd/jail-roster-api/reports"
	templates "github.com/shakerpd/jail-roster-api/templates/html"
)

// morningReportSchedule fires daily at 6 AM UTC, before shift change.
const morningReportSchedule = "0 6 * * *"

// Scheduler handles periodic background jobs for the roster service
type Scheduler struct {
	cron *cron.Cron
	RDB  databases.RosterDatabase
}

// NewScheduler creates a new scheduler instance
func NewScheduler(rDB databases.RosterDatabase) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithLocation(time.UTC)),
		RDB:  rDB,
	}
}

// Start begins the scheduler with all registered jobs. The morning report
// job only registers when MORNING_REPORT_EMAIL is set.
func (s *Scheduler) Start() {
	recipient := os.Getenv("MORNING_REPORT_EMAIL")
	if recipient == "" {
		zap.S().Info("MORNING_REPORT_EMAIL not set, morning report disabled")
		return
	}

	_, err := s.cron.AddFunc(morningReportSchedule, func() { s.sendMorningReport(recipient) })
	if err != nil {
		zap.S().Errorw("failed to register morning report job", "error", err)
		return
	}

	s.cron.Start()
	zap.S().Infow("Morning report scheduler started", "recipient", recipient)
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("Morning report scheduler stopped")
}

// sendMorningReport renders the current roster report and emails it
func (s *Scheduler) sendMorningReport(recipient string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	zap.S().Info("Running morning report job")

	records, err := s.RDB.Find(ctx, bson.M{})
	if err != nil {
		zap.S().Errorw("failed to load roster for morning report", "error", err)
		return
	}

	pdf, err := reports.RosterPDF(records, time.Now())
	if err != nil {
		zap.S().Errorw("failed to render morning report", "error", err)
		return
	}

	subject := "Morning Jail Roster Report " + time.Now().Format("01/02/2006")
	body := fmt.Sprintf("Attached is this morning's jail roster report.\n\nRecords on roster: %d", len(records))
	if err := SendRosterReport(recipient, subject, body, pdf); err != nil {
		zap.S().Errorw("failed to send morning report", "error", err, "recipient", recipient)
		return
	}

	zap.S().Infow("Morning report sent", "recipient", recipient, "records", len(records))
}

// SendRosterReport emails a rendered report PDF through SendGrid. Shared
// with the on-demand email endpoint.
func SendRosterReport(toEmail, subject, body string, pdf []byte) error {
	apiKey := os.Getenv("SENDGRID_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("sendgrid api key is not set")
	}

	m := mail.NewV3Mail()
	m.SetFrom(mail.NewEmail("Shaker PD Jail Roster", "no-reply@shakerpd.com"))
	m.Subject = subject

	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail("", toEmail))
	m.AddPersonalizations(p)

	m.AddContent(
		mail.NewContent("text/plain", body),
		mail.NewContent("text/html", templates.RenderRosterEmail(subject, body)),
	)

	attachment := mail.NewAttachment()
	attachment.SetContent(base64.StdEncoding.EncodeToString(pdf))
	attachment.SetType("application/pdf")
	attachment.SetFilename("jail_roster.pdf")
	attachment.SetDisposition("attachment")
	m.AddAttachment(attachment)

	response, err := sendgrid.NewSendClient(apiKey).Send(m)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d: %s", response.StatusCode, response.Body)
	}
	return nil
}
