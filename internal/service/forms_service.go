package service

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mfportal/internal/db"
	"github.com/mfportal/internal/logger"
	"github.com/mfportal/internal/metrics"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FormState tags a FormResult.
type FormState string

const (
	FormStateSuccess FormState = "success"
	FormStateError   FormState = "error"
)

// FormResult is the structured reply for every form endpoint.
type FormResult struct {
	Errors  map[string][]string `json:"errors,omitempty"`
	Message string              `json:"message"`
	State   FormState           `json:"state"`
}

// Failed reports whether the submission was rejected by validation.
func (r FormResult) Failed() bool {
	return r.State == FormStateError
}

// ErrSubscriberNotFound 在确认码无效时返回
var ErrSubscriberNotFound = errors.New("subscriber not found")

const (
	contactSuccessMessage    = "Success! Contact Request was successfully sent."
	investorSuccessMessage   = "Success! Investor Inquiry was successfully sent. A member of our team will be in touch shortly!"
	newsletterSuccessMessage = "Success! You have succesfully subscribed to our updates."
	alreadySubscribedMessage = "You have already subscribed."
	confirmedMessage         = "Thank you! Your email address has been confirmed."
	investAmountMessage      = "Please let us know how much you are looking to invest."
	courtesyMessage          = "<p>Thank you for contacting us. One of our team members will be in touch shortly.</p>"
)

// ContactFormRequest is the contact-us form body.
type ContactFormRequest struct {
	FirstName string `json:"firstName" form:"firstName"`
	LastName  string `json:"lastName" form:"lastName"`
	Email     string `json:"email" form:"email"`
	Phone     string `json:"phone" form:"phone"`
	Comments  string `json:"comments" form:"comments"`
}

// InvestorInquiryRequest is the investor-inquiry form body.
type InvestorInquiryRequest struct {
	FirstName       string   `json:"firstName" form:"firstName"`
	LastName        string   `json:"lastName" form:"lastName"`
	Email           string   `json:"email" form:"email"`
	Phone           string   `json:"phone" form:"phone"`
	Timezone        string   `json:"timezone" form:"timezone"`
	LookingToInvest *float64 `json:"lookingToInvest" form:"lookingToInvest"`
	Comments        string   `json:"comments" form:"comments"`
}

// NewsletterSubscriberRequest is the newsletter signup form body.
type NewsletterSubscriberRequest struct {
	Email string `json:"email" form:"email"`
}

// RequestInfo carries what the forms need to know about the HTTP request.
type RequestInfo struct {
	Scheme   string
	Host     string
	ClientIP string
}

// BaseURL returns scheme://host.
func (r RequestInfo) BaseURL() string {
	scheme := r.Scheme
	if scheme == "" {
		scheme = "http"
	}
	return scheme + "://" + r.Host
}

// FormsService 处理联系我们、投资意向与邮件订阅三类表单
type FormsService struct {
	db        *gorm.DB
	site      SiteInfoProvider
	validator EmailValidator
	templates TemplateRenderer
	mail      EmailSender
	geo       IPLookup
	now       func() time.Time
}

// FormsDeps 汇总 FormsService 的协作者
type FormsDeps struct {
	DB        *gorm.DB
	Site      SiteInfoProvider
	Validator EmailValidator
	Templates TemplateRenderer
	Mail      EmailSender
	Geo       IPLookup
}

// NewFormsService 构造 FormsService，Geo 为空时跳过地理位置查询
func NewFormsService(deps FormsDeps) *FormsService {
	geo := deps.Geo
	if geo == nil {
		geo = NewGracefulIPLookup(nil)
	}
	return &FormsService{
		db:        deps.DB,
		site:      deps.Site,
		validator: deps.Validator,
		templates: deps.Templates,
		mail:      deps.Mail,
		geo:       geo,
		now:       time.Now,
	}
}

func invalidEmailResult(message string) FormResult {
	return FormResult{
		Errors:  map[string][]string{"Email": {message}},
		Message: message,
		State:   FormStateError,
	}
}

func displayName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}

// ContactUs 通知业务邮箱并给提交者发送确认邮件
func (s *FormsService) ContactUs(ctx context.Context, form ContactFormRequest, req RequestInfo) (FormResult, error) {
	validation := s.validator.Validate(form.Email)
	if !validation.IsValid {
		metrics.FormSubmissions.WithLabelValues("contact-us", "invalid").Inc()
		return invalidEmailResult(validation.Message), nil
	}
	email := strings.TrimSpace(form.Email)

	site, err := s.site.SiteInfo(ctx)
	if err != nil {
		return FormResult{}, fmt.Errorf("load site info: %w", err)
	}

	notification := ContactNotification{
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Email:     email,
		Phone:     form.Phone,
		Comments:  RenderComments(form.Comments),
		SiteTitle: site.Title,
		Subject:   "Contact Form Request",
		Year:      s.now().Year(),
	}
	if err := s.send(ctx, TemplateContactNotification, notification, notification.Subject, site.NotificationEmail, site.Title); err != nil {
		return FormResult{}, err
	}

	if err := s.sendCourtesy(ctx, site, req, email, displayName(form.FirstName, form.LastName), courtesyMessage, "Investor Request "+site.Title); err != nil {
		return FormResult{}, err
	}

	metrics.FormSubmissions.WithLabelValues("contact-us", "success").Inc()
	return FormResult{Message: contactSuccessMessage, State: FormStateSuccess}, nil
}

// InvestorInquiry 保存投资意向并发送通知与确认邮件
func (s *FormsService) InvestorInquiry(ctx context.Context, form InvestorInquiryRequest, req RequestInfo) (FormResult, error) {
	validation := s.validator.Validate(form.Email)
	if !validation.IsValid || form.LookingToInvest == nil {
		metrics.FormSubmissions.WithLabelValues("investor-inquiry", "invalid").Inc()
		if !validation.IsValid {
			result := invalidEmailResult(validation.Message)
			if form.LookingToInvest == nil {
				result.Errors["LookingToInvest"] = []string{investAmountMessage}
			}
			return result, nil
		}
		return FormResult{
			Errors: map[string][]string{
				"Email":           {investAmountMessage},
				"LookingToInvest": {investAmountMessage},
			},
			Message: investAmountMessage,
			State:   FormStateError,
		}, nil
	}
	email := strings.TrimSpace(form.Email)

	prospect := db.InvestorProspect{
		FirstName:       strings.TrimSpace(form.FirstName),
		LastName:        strings.TrimSpace(form.LastName),
		Email:           email,
		Phone:           strings.TrimSpace(form.Phone),
		Timezone:        strings.TrimSpace(form.Timezone),
		LookingToInvest: *form.LookingToInvest,
		Comments:        form.Comments,
	}
	if err := s.db.WithContext(ctx).Create(&prospect).Error; err != nil {
		return FormResult{}, fmt.Errorf("create investor prospect: %w", err)
	}

	site, err := s.site.SiteInfo(ctx)
	if err != nil {
		return FormResult{}, fmt.Errorf("load site info: %w", err)
	}

	notification := InvestorNotification{
		FirstName:       prospect.FirstName,
		LastName:        prospect.LastName,
		Email:           email,
		Phone:           prospect.Phone,
		Timezone:        prospect.Timezone,
		LookingToInvest: FormatCurrency(prospect.LookingToInvest),
		Comments:        RenderComments(form.Comments),
		SiteTitle:       site.Title,
		Subject:         fmt.Sprintf("Investor Inquiry - %s %s", form.FirstName, form.LastName),
		Year:            s.now().Year(),
	}
	if err := s.send(ctx, TemplateInvestorNotification, notification, notification.Subject, site.NotificationEmail, site.Title); err != nil {
		return FormResult{}, err
	}

	if err := s.sendCourtesy(ctx, site, req, email, displayName(form.FirstName, form.LastName), courtesyMessage, "Investor Request "+site.Title); err != nil {
		return FormResult{}, err
	}

	metrics.FormSubmissions.WithLabelValues("investor-inquiry", "success").Inc()
	return FormResult{Message: investorSuccessMessage, State: FormStateSuccess}, nil
}

// NewsletterSubscriber 登记订阅者并发送确认链接，重复订阅直接返回成功提示
func (s *FormsService) NewsletterSubscriber(ctx context.Context, form NewsletterSubscriberRequest, req RequestInfo) (FormResult, error) {
	validation := s.validator.Validate(form.Email)
	if !validation.IsValid {
		metrics.FormSubmissions.WithLabelValues("newsletter-subscriber", "invalid").Inc()
		return invalidEmailResult(validation.Message), nil
	}
	email := strings.ToLower(strings.TrimSpace(form.Email))
	already := FormResult{Message: alreadySubscribedMessage, State: FormStateSuccess}

	var existing int64
	if err := s.db.WithContext(ctx).Model(&db.Subscriber{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		return FormResult{}, fmt.Errorf("check subscriber: %w", err)
	}
	if existing > 0 {
		metrics.FormSubmissions.WithLabelValues("newsletter-subscriber", "duplicate").Inc()
		return already, nil
	}

	location, err := s.geo.Lookup(ctx, req.ClientIP, req.Host)
	if err != nil {
		logger.FromContext(ctx).Warn("subscriber geolocation failed", zap.Error(err))
		location = IPLocation{IP: req.ClientIP}
	}

	subscriber := db.Subscriber{
		Email:            email,
		IPAddress:        req.ClientIP,
		City:             location.City,
		Region:           location.Region,
		Country:          location.Country,
		Continent:        location.Continent,
		ConfirmationCode: strings.ReplaceAll(uuid.NewString(), "-", ""),
	}
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
		Create(&subscriber)
	if res.Error != nil {
		return FormResult{}, fmt.Errorf("create subscriber: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		metrics.FormSubmissions.WithLabelValues("newsletter-subscriber", "duplicate").Inc()
		return already, nil
	}

	site, err := s.site.SiteInfo(ctx)
	if err != nil {
		return FormResult{}, fmt.Errorf("load site info: %w", err)
	}

	confirmationURL := req.BaseURL() + "/subscriber/confirmation/" + url.PathEscape(subscriber.ConfirmationCode)
	escaped := template.HTMLEscapeString(confirmationURL)
	message := "<p>Thank you for signing up!<br />Before we start sending you messages, please confirm that this email address belongs to you and that you would like to receive messages from us. Don't worry, if you didn't sign up, you won't get anything from us unless you confirm your email address.</p>" +
		`<div class="text-center"><p><a href="` + escaped + `">Confirm Email</a><br />Link not working? Copy and paste this url into your browser: ` + escaped + `</p></div>`

	if err := s.sendCourtesy(ctx, site, req, email, email, message, "Successfully subscribed to updates on "+site.Title); err != nil {
		return FormResult{}, err
	}

	metrics.FormSubmissions.WithLabelValues("newsletter-subscriber", "success").Inc()
	return FormResult{Message: newsletterSuccessMessage, State: FormStateSuccess}, nil
}

// ConfirmSubscriber 通过确认码激活订阅，重复确认保持首次确认时间
func (s *FormsService) ConfirmSubscriber(ctx context.Context, code string) (FormResult, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return FormResult{}, ErrSubscriberNotFound
	}

	var subscriber db.Subscriber
	if err := s.db.WithContext(ctx).Where("confirmation_code = ?", trimmed).First(&subscriber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return FormResult{}, ErrSubscriberNotFound
		}
		return FormResult{}, fmt.Errorf("find subscriber: %w", err)
	}

	if subscriber.ConfirmedAt == nil {
		now := s.now()
		if err := s.db.WithContext(ctx).Model(&subscriber).Updates(map[string]interface{}{
			"confirmed_at": now,
			"is_active":    true,
		}).Error; err != nil {
			return FormResult{}, fmt.Errorf("confirm subscriber: %w", err)
		}
	}

	return FormResult{Message: confirmedMessage, State: FormStateSuccess}, nil
}

func (s *FormsService) sendCourtesy(ctx context.Context, site SiteInfo, req RequestInfo, to, name, message, subject string) error {
	model := ContactMessage{
		DisplayName: name,
		Message:     template.HTML(message),
		SiteTitle:   site.Title,
		SiteURL:     req.BaseURL(),
		Subject:     subject,
		Year:        s.now().Year(),
	}
	return s.send(ctx, TemplateContactMessage, model, subject, to, name)
}

func (s *FormsService) send(ctx context.Context, tmpl PortalTemplate, model any, subject, to, toName string) error {
	rendered, err := s.templates.Render(tmpl, model)
	if err != nil {
		metrics.EmailsSent.WithLabelValues(tmpl.String(), "render_error").Inc()
		return err
	}

	msg := EmailMessage{To: to, ToName: toName, Subject: subject, HTML: rendered.HTML, Text: rendered.Text}
	if err := s.mail.Send(ctx, msg); err != nil {
		metrics.EmailsSent.WithLabelValues(tmpl.String(), "failure").Inc()
		return fmt.Errorf("send %s email: %w", tmpl, err)
	}
	metrics.EmailsSent.WithLabelValues(tmpl.String(), "success").Inc()
	return nil
}
