package services

import (
	"log"

	"github.com/Moderated-Gallery/Gallery-Service/internal/store"
	"github.com/Moderated-Gallery/Gallery-Service/internal/storage"
	clamd "github.com/dutchcoders/go-clamd"
)

const scanActor = "clamav-scanner"

// ScanImage streams a stored upload through ClamAV. When a signature is
// detected the image is rejected and its binary removed; the metadata record
// stays so the uploader can see the rejection. Scan failures only log — the
// record is left untouched.
func ScanImage(s *store.ImageStore, blobs storage.Storage, clamAvURL string, imageID int, objectName string) {
	rc, err := blobs.Open(objectName)
	if err != nil {
		log.Printf("[ClamAV] failed to open %s for scanning: %v", objectName, err)
		return
	}
	defer rc.Close()

	c := clamd.NewClamd(clamAvURL)
	response, err := c.ScanStream(rc, make(chan bool))
	if err != nil {
		log.Printf("[ClamAV] scan failed for %s: %v", objectName, err)
		return
	}

	for res := range response {
		if res.Status != clamd.RES_FOUND {
			continue
		}
		log.Printf("[ClamAV] virus detected in image %d (%s): %s", imageID, objectName, res.Description)

		if _, err := s.Reject(imageID, scanActor, "Virus detected: "+res.Description); err != nil {
			log.Printf("[ClamAV] failed to reject image %d: %v", imageID, err)
		}
		if err := blobs.Remove(objectName); err != nil {
			log.Printf("[ClamAV] failed to delete infected file %s: %v", objectName, err)
		}
		if err := blobs.Remove("previews/" + objectName); err != nil {
			log.Printf("[ClamAV] failed to delete preview for %s: %v", objectName, err)
		}
		return
	}

	log.Printf("[ClamAV] scan finished for image %d: clean", imageID)
}
