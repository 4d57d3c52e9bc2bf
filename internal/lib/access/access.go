// Package access реализует политику доступа к контенту по уровням.
//
// Уровни упорядочены: basic < premium < drm. Уровень basic открыт для
// любого аккаунта; premium и drm требуют действующей премиальной подписки
// либо роли администратора. Правила для premium и drm совпадают намеренно:
// drm — наиболее чувствительное подмножество премиального контента.
package access

import (
	"fmt"
	"time"

	"github.com/magabrotheeeer/video-access-gateway/internal/models"
)

// Tier — уровень чувствительности контента.
type Tier string

const (
	// TierBasic — публичный контент, доступен любому аккаунту.
	TierBasic Tier = "basic"
	// TierPremium — контент по премиальной подписке.
	TierPremium Tier = "premium"
	// TierDRM — DRM-защищённый контент, самое строгое подмножество premium.
	TierDRM Tier = "drm"
)

// ParseTier разбирает строковое представление уровня доступа.
func ParseTier(s string) (Tier, error) {
	const op = "access.ParseTier"
	switch Tier(s) {
	case TierBasic, TierPremium, TierDRM:
		return Tier(s), nil
	default:
		return "", fmt.Errorf("%s: unknown tier %q", op, s)
	}
}

// CanAccess решает, открыт ли аккаунту контент указанного уровня
// в момент времени now. Чистая функция без побочных эффектов.
//
// Порядок проверок:
//  1. basic доступен всегда;
//  2. администратор проходит без проверки подписки;
//  3. иначе нужна премиальная подписка, не истёкшая к now
//     (отсутствие даты истечения означает бессрочную подписку).
func CanAccess(acc *models.Account, tier Tier, now time.Time) bool {
	if tier == TierBasic {
		return true
	}
	if acc == nil {
		return false
	}
	if acc.Role == models.RoleAdmin {
		return true
	}
	if acc.SubscriptionType != models.SubscriptionPremium {
		return false
	}
	if acc.SubscriptionExpiry == nil {
		return true
	}
	return acc.SubscriptionExpiry.After(now)
}
