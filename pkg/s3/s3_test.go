package s3

import (
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/stretchr/testify/assert"
)

func newOfflineClient(cfg *aws.Config) *Client {
	sess := session.Must(session.NewSession(cfg))
	return &Client{s3Client: s3.New(sess), bucket: "blog-media"}
}

func TestObjectKey(t *testing.T) {
	key := ObjectKey("posts", "user-1", "Cover.PNG")

	assert.True(t, strings.HasPrefix(key, "posts/user-1/"))
	assert.True(t, strings.HasSuffix(key, ".png"))
	assert.NotEqual(t, key, ObjectKey("posts", "user-1", "Cover.PNG"))
}

func TestPublicURL_AWS(t *testing.T) {
	client := newOfflineClient(&aws.Config{Region: aws.String("eu-west-1")})

	url := client.publicURL("posts/u/a.png")
	assert.Equal(t, "https://blog-media.s3.eu-west-1.amazonaws.com/posts/u/a.png", url)

	key, ok := client.KeyFromURL(url)
	assert.True(t, ok)
	assert.Equal(t, "posts/u/a.png", key)
}

func TestPublicURL_MinIO(t *testing.T) {
	client := newOfflineClient(&aws.Config{
		Region:           aws.String("us-east-1"),
		Endpoint:         aws.String("http://localhost:9000"),
		DisableSSL:       aws.Bool(true),
		S3ForcePathStyle: aws.Bool(true),
	})

	url := client.publicURL("avatars/u/b.jpg")
	assert.Equal(t, "http://localhost:9000/blog-media/avatars/u/b.jpg", url)

	key, ok := client.KeyFromURL(url)
	assert.True(t, ok)
	assert.Equal(t, "avatars/u/b.jpg", key)
}

func TestKeyFromURL_Foreign(t *testing.T) {
	client := newOfflineClient(&aws.Config{Region: aws.String("us-east-1")})

	_, ok := client.KeyFromURL("https://example.com/picture.png")
	assert.False(t, ok)
}
