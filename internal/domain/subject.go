package domain

import (
	"fmt"
	"strings"
)

// Subject prefixes of the two message families carried by the ingestion stream
const (
	SubjectPrefixIngest  = "ingest"
	SubjectPrefixWebhook = "webhook"
)

// MessageKind classifies a bus message by its subject family
type MessageKind int

const (
	KindIngest MessageKind = iota + 1
	KindWebhook
)

func (k MessageKind) String() string {
	switch k {
	case KindIngest:
		return "ingest"
	case KindWebhook:
		return "webhook"
	default:
		return "unknown"
	}
}

// Route holds the routing keys extracted from a subject.
// Ingest routes carry TenantID; webhook routes carry ShopDomain and Action.
type Route struct {
	Kind       MessageKind
	TenantID   string
	ShopDomain string
	Resource   Resource
	Action     string
}

// Topic rebuilds the resource/action form of a webhook route
func (r Route) Topic() string {
	return string(r.Resource) + "/" + r.Action
}

// SyncSubject returns ingest.{tenantId}.{resource}
func SyncSubject(tenantID string, resource Resource) string {
	return SubjectPrefixIngest + "." + tenantID + "." + string(resource)
}

// WebhookSubject returns webhook.{shopDomain}.{resource}.{action} for a resource/action topic
func WebhookSubject(shopDomain, topic string) string {
	return SubjectPrefixWebhook + "." + shopDomain + "." + NormalizeTopic(topic)
}

// ValidateTopic accepts resource/action topics whose parts can each form one subject token
func ValidateTopic(topic string) error {
	resource, action, ok := strings.Cut(topic, "/")
	if !ok || resource == "" || action == "" ||
		strings.ContainsAny(topic, " .*>\t\r\n") || strings.Contains(action, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidTopic, topic)
	}
	return nil
}

// NormalizeTopic turns orders/create into orders.create
func NormalizeTopic(topic string) string {
	return strings.ReplaceAll(strings.TrimSpace(topic), "/", ".")
}

// ParseSubject classifies a subject and extracts its routing keys.
// Shop domains contain dots, so a webhook subject is split from both ends:
// the first token is the family, the last two are resource and action.
func ParseSubject(subject string) (Route, error) {
	parts := strings.Split(subject, ".")
	switch parts[0] {
	case SubjectPrefixIngest:
		if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
			return Route{}, fmt.Errorf("%w: %s", ErrInvalidSubject, subject)
		}
		return Route{
			Kind:     KindIngest,
			TenantID: parts[1],
			Resource: Resource(parts[2]),
		}, nil
	case SubjectPrefixWebhook:
		if len(parts) < 4 {
			return Route{}, fmt.Errorf("%w: %s", ErrInvalidSubject, subject)
		}
		n := len(parts)
		shop := strings.Join(parts[1:n-2], ".")
		if shop == "" || parts[n-2] == "" || parts[n-1] == "" {
			return Route{}, fmt.Errorf("%w: %s", ErrInvalidSubject, subject)
		}
		return Route{
			Kind:       KindWebhook,
			ShopDomain: shop,
			Resource:   Resource(parts[n-2]),
			Action:     parts[n-1],
		}, nil
	default:
		return Route{}, fmt.Errorf("%w: %s", ErrInvalidSubject, subject)
	}
}
