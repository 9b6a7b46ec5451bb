package extractor

// RawMetadata mirrors the subset of the extractor's JSON dump that the
// rest of the system consumes. The tool reports wildly different field
// sets depending on the source, so anything that may legitimately be
// missing is a pointer. Consumers must treat a nil pointer as "not
// reported", which is distinct from a reported zero.
type RawMetadata struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`

	Uploader   string `json:"uploader"`
	UploaderID string `json:"uploader_id"`
	Creator    string `json:"creator"`
	Channel    string `json:"channel"`

	Duration *float64 `json:"duration"`
	Width    *int     `json:"width"`
	Height   *int     `json:"height"`
	FPS      *float64 `json:"fps"`
	VCodec   string   `json:"vcodec"`
	ACodec   string   `json:"acodec"`

	Filesize       *int64 `json:"filesize"`
	FilesizeApprox *int64 `json:"filesize_approx"`

	ViewCount    *int64 `json:"view_count"`
	LikeCount    *int64 `json:"like_count"`
	CommentCount *int64 `json:"comment_count"`
	RepostCount  *int64 `json:"repost_count"`
	CollectCount *int64 `json:"collect_count"`

	Timestamp  *int64 `json:"timestamp"`
	UploadDate string `json:"upload_date"`

	Track  string `json:"track"`
	Artist string `json:"artist"`
	Album  string `json:"album"`
}
