package composer

import (
	"fmt"
	"strings"

	"github.com/desertthunder/crosspost/internal/models"
	"github.com/desertthunder/crosspost/internal/shared"
)

// AttachImage adds img to the post. At most [models.MaxImages] images are kept.
func (c *Composer) AttachImage(img models.Image) error {
	if strings.TrimSpace(img.Name) == "" || len(img.Data) == 0 {
		return fmt.Errorf("%w: image %q is empty", shared.ErrInvalidInput, img.Name)
	}
	if len(c.images) >= models.MaxImages {
		return fmt.Errorf("%w: at most %d per post", shared.ErrTooManyImages, models.MaxImages)
	}
	c.images = append(c.images, img)
	return nil
}

// Images returns the attached images in attach order.
func (c *Composer) Images() []models.Image {
	return append([]models.Image(nil), c.images...)
}

// ClearImages drops every attachment.
func (c *Composer) ClearImages() { c.images = nil }
