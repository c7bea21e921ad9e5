package constants

type TaskStatus string

const (
	StatusDraft          TaskStatus = "draft"
	StatusPendingPayment TaskStatus = "pending_payment"
	StatusActive         TaskStatus = "active"
	StatusCompleted      TaskStatus = "completed"
	StatusCancelled      TaskStatus = "cancelled"

	// StatusNone marks the previous_status of the first history entry.
	StatusNone TaskStatus = "none"
	// StatusDeleted marks the final history entry written before a hard delete.
	StatusDeleted TaskStatus = "deleted"
)

type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformFacebook  Platform = "facebook"
	PlatformTwitter   Platform = "twitter"
	PlatformTikTok    Platform = "tiktok"
	PlatformYouTube   Platform = "youtube"
)

func (p Platform) Valid() bool {
	switch p {
	case PlatformInstagram, PlatformFacebook, PlatformTwitter, PlatformTikTok, PlatformYouTube:
		return true
	}
	return false
}

type TaskType string

const (
	TaskTypeLike      TaskType = "like"
	TaskTypeComment   TaskType = "comment"
	TaskTypeShare     TaskType = "share"
	TaskTypeFollow    TaskType = "follow"
	TaskTypeSubscribe TaskType = "subscribe"
)

func (t TaskType) Valid() bool {
	switch t {
	case TaskTypeLike, TaskTypeComment, TaskTypeShare, TaskTypeFollow, TaskTypeSubscribe:
		return true
	}
	return false
}

const (
	TitleMinLen       = 3
	TitleMaxLen       = 255
	TextMinLen        = 10
	TextMaxLen        = 5000
	MaxPerformersCap  = 10000
	DefaultFeePercent = "0.15"
)
