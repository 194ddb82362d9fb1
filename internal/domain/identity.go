package domain

// Identity — кто сидит за соединением. Phone принимается как есть,
// без верификации (этим занимается внешний слой, если вообще занимается).
type Identity struct {
	Phone     string
	Username  string
	AvatarURL string
}
