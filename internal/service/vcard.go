package service

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/mfportal/internal/db"
)

// VCardMIMEType is the content type served for contact cards.
const VCardMIMEType = "text/x-vcard"

// FieldSocialProfile carries one social link per provider, typed by provider name.
const FieldSocialProfile = "X-SOCIALPROFILE"

const vcardDateLayout = "Monday, January 2, 2006"

// VCardInput collects what goes on a contact card besides the profile itself.
type VCardInput struct {
	User              db.SiteUser
	LegalBusinessName string
	Location          IPLocation
	Now               time.Time
}

// BuildVCard renders a vCard 3.0 contact for the given profile.
func BuildVCard(in VCardInput) ([]byte, error) {
	user := in.User
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}

	card := make(vcard.Card)
	card.SetValue(vcard.FieldVersion, "3.0")
	card.SetValue(vcard.FieldOrganization, in.LegalBusinessName)
	card.SetValue(vcard.FieldTitle, user.Title)
	card.SetKind(vcard.KindIndividual)
	card.SetValue(vcard.FieldLanguage, "en-US")

	card.SetName(&vcard.Name{
		GivenName:  user.FirstName,
		FamilyName: user.LastName,
	})
	displayName := strings.TrimSpace(user.DisplayName)
	if displayName == "" {
		displayName = user.FullName()
	}
	card.SetValue(vcard.FieldFormattedName, displayName)

	if email := strings.TrimSpace(user.Email); email != "" {
		card.Add(vcard.FieldEmail, &vcard.Field{
			Value:  email,
			Params: vcard.Params{vcard.ParamType: {"work"}},
		})
		card.Add(vcard.FieldPhoto, &vcard.Field{
			Value:  GravatarURL(email, 180),
			Params: vcard.Params{vcard.ParamValue: {"uri"}},
		})
	}
	if phone := strings.TrimSpace(user.PhoneNumber); phone != "" {
		card.Add(vcard.FieldTelephone, &vcard.Field{
			Value:  phone,
			Params: vcard.Params{vcard.ParamType: {"work", "voice"}},
		})
	}

	card.SetValue(vcard.FieldNote, fmt.Sprintf(
		"Contact added %s\nAdded from %s\nOn or near: %s, %s",
		now.Format(vcardDateLayout), in.Location.IP, in.Location.City, in.Location.Region,
	))

	for _, link := range user.SocialLinks {
		name := strings.ToLower(strings.TrimSpace(link.SocialProvider.Name))
		if name == "" {
			continue
		}
		card.Add(FieldSocialProfile, &vcard.Field{
			Value:  link.URI(),
			Params: vcard.Params{vcard.ParamType: {name}},
		})
	}

	var buf bytes.Buffer
	if err := vcard.NewEncoder(&buf).Encode(card); err != nil {
		return nil, fmt.Errorf("encode vcard: %w", err)
	}
	return buf.Bytes(), nil
}

// VCardFileName returns "{First}{Last}.vcf" with every space removed.
func VCardFileName(user db.SiteUser) string {
	return strings.ReplaceAll(user.FirstName+user.LastName, " ", "") + ".vcf"
}

// GravatarURL returns the avatar URL for an email, falling back to the mystery-person image.
func GravatarURL(email string, size int) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?s=%d&d=mp", hex.EncodeToString(sum[:]), size)
}
