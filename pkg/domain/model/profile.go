package model

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// UrgencyKeywords holds the tiered urgency vocabulary. Strong and Medium
// entries raise urgency; Deprioritize entries mark explicit "no rush"
// language and suppress urgency triggering.
type UrgencyKeywords struct {
	Strong       []string `toml:"strong"`
	Medium       []string `toml:"medium"`
	Deprioritize []string `toml:"deprioritize"`
}

// ScheduleSettings are the knobs of the assignment scheduler.
type ScheduleSettings struct {
	TaskLimit             int     `toml:"task_limit"`
	UrgencyFloor          float64 `toml:"urgency_floor"`
	TimePressureThreshold float64 `toml:"time_pressure_threshold"`
	StaleEscalation       bool    `toml:"stale_escalation"`
}

// DefaultScheduleSettings returns the stock scheduler configuration.
func DefaultScheduleSettings() ScheduleSettings {
	return ScheduleSettings{
		TaskLimit:             20,
		UrgencyFloor:          90,
		TimePressureThreshold: 15,
		StaleEscalation:       true,
	}
}

// Validate checks if the schedule settings are usable.
func (s *ScheduleSettings) Validate() error {
	if s.TaskLimit < 1 {
		return goerr.New("task limit must be positive", goerr.V("task_limit", s.TaskLimit))
	}
	if s.UrgencyFloor < 0 || s.UrgencyFloor > 100 {
		return goerr.New("urgency floor must be within 0-100", goerr.V("urgency_floor", s.UrgencyFloor))
	}
	if s.TimePressureThreshold < 0 || s.TimePressureThreshold > 100 {
		return goerr.New("time pressure threshold must be within 0-100", goerr.V("threshold", s.TimePressureThreshold))
	}
	return nil
}

// TriageProfile carries the per-user configuration the classifier stages and
// the scorer depend on: identity, VIP lists, sender registries, and urgency
// vocabulary. It is injected explicitly so tests can substitute fixtures.
type TriageProfile struct {
	UserEmail     string `toml:"user_email"`
	UserFirstName string `toml:"user_first_name"`
	UserDomain    string `toml:"user_domain"` // derived from UserEmail when empty

	VIPSenders []string `toml:"vip_senders"`
	VIPDomains []string `toml:"vip_domains"`

	MarketingDomains    []string `toml:"marketing_domains"`
	NotificationDomains []string `toml:"notification_domains"`
	CalendarSenders     []string `toml:"calendar_senders"`
	TravelDomains       []string `toml:"travel_domains"`

	Urgency UrgencyKeywords `toml:"urgency"`

	Schedule ScheduleSettings `toml:"schedule"`
}

// Domain returns the user's own domain for internal/external detection.
func (p *TriageProfile) Domain() string {
	if p.UserDomain != "" {
		return strings.ToLower(p.UserDomain)
	}
	return AddressDomain(p.UserEmail)
}

// IsVIP reports whether the sender address is on the VIP allow-lists,
// either directly or by domain.
func (p *TriageProfile) IsVIP(addr string) bool {
	if addr == "" {
		return false
	}
	for _, vip := range p.VIPSenders {
		if strings.EqualFold(vip, addr) {
			return true
		}
	}
	domain := AddressDomain(addr)
	if domain == "" {
		return false
	}
	for _, vip := range p.VIPDomains {
		if strings.EqualFold(vip, domain) {
			return true
		}
	}
	return false
}

// Validate checks if the profile is usable.
func (p *TriageProfile) Validate() error {
	if p.UserEmail == "" {
		return goerr.New("user email is required")
	}
	if !strings.Contains(p.UserEmail, "@") {
		return goerr.New("user email must be an address", goerr.V("user_email", p.UserEmail))
	}
	if err := p.Schedule.Validate(); err != nil {
		return goerr.Wrap(err, "invalid schedule settings")
	}
	return nil
}

// DefaultProfile returns a profile preloaded with the stock sender
// registries and urgency vocabulary. Callers fill in the user identity and
// override lists as needed.
func DefaultProfile() *TriageProfile {
	return &TriageProfile{
		MarketingDomains: []string{
			"mailchimp.com", "sendgrid.net", "constantcontact.com",
			"hubspot.com", "marketo.com", "campaign-monitor.com",
			"mailgun.org", "postmarkapp.com", "amazonses.com",
		},
		NotificationDomains: []string{
			"microsoft.com", "google.com", "apple.com", "github.com",
			"slack.com", "atlassian.com", "servicenow.com", "workday.com",
			"asana.com", "trello.com", "notion.so", "figma.com",
			"dropbox.com", "box.com", "zoom.us",
		},
		CalendarSenders: []string{
			"calendar-notification@google.com",
			"calendar@microsoft.com",
			"noreply@calendar.microsoft.com",
			"teams@microsoft.com",
		},
		TravelDomains: []string{
			"delta.com", "united.com", "aa.com", "southwest.com",
			"jetblue.com", "alaskaair.com", "spiritairlines.com", "frontier.com",
			"marriott.com", "hilton.com", "ihg.com", "hyatt.com",
			"choicehotels.com", "wyndham.com",
			"hertz.com", "enterprise.com", "avis.com", "budget.com", "nationalcar.com",
			"uber.com", "lyft.com",
			"expedia.com", "booking.com", "hotels.com", "kayak.com",
			"tripadvisor.com", "airbnb.com", "vrbo.com", "priceline.com",
		},
		Urgency: UrgencyKeywords{
			Strong: []string{
				`\basap\b`, `\burgent\b`, `\bimmediately\b`, `\bcritical\b`,
				`\bemergency\b`, `\btime-critical\b`, `\bright now\b`,
				`\bneeds? immediate\b`,
			},
			Medium: []string{
				`\btime[- ]sensitive\b`, `\bpriority\b`, `\baction required\b`,
				`\bplease respond\b`, `\bresponse needed\b`, `\breview and respond\b`,
				`\bneeds? (your )?attention\b`, `\brequires? (your )?action\b`,
				`\bimportant\b`, `\bdeadline\b`, `\bblock(er|ing)\b`,
				`\bneeds? your approval\b`,
			},
			Deprioritize: []string{
				`\bwhen you (get a|have) chance\b`, `\bno rush\b`, `\blow priority\b`,
				`\bwhenever you (can|have time)\b`, `\bno hurry\b`,
				`\bat your convenience\b`,
			},
		},
		Schedule: DefaultScheduleSettings(),
	}
}
