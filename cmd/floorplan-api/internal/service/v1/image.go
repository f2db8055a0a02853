package v1

type ImageCreateRequest struct {
	Describable
	ID          string  `json:"id,omitempty" description:"the unique ID of the image, generated if empty" optional:"true"`
	File        *string `json:"file,omitempty" description:"the path of the uploaded image" optional:"true"`
	ExternalURL *string `json:"external_url,omitempty" description:"the url of the image" optional:"true"`
	Filename    *string `json:"filename,omitempty" description:"the name of the image file" optional:"true"`
	Comments    *string `json:"comments,omitempty" description:"comments on the image" optional:"true"`
}
