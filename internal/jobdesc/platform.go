// Package jobdesc - platform.go provides ATS platform detection and
// platform-specific description selectors.
package jobdesc

import (
	"net/url"
	"strings"
)

// Platform represents a known applicant-tracking-system host.
type Platform string

const (
	// PlatformGreenhouse is the Greenhouse ATS platform
	PlatformGreenhouse Platform = "greenhouse"
	// PlatformLever is the Lever ATS platform
	PlatformLever Platform = "lever"
	// PlatformWorkday is the Workday ATS platform
	PlatformWorkday Platform = "workday"
	// PlatformAshby is the Ashby ATS platform
	PlatformAshby Platform = "ashby"
	// PlatformLinkedIn is LinkedIn job postings
	PlatformLinkedIn Platform = "linkedin"
	// PlatformIndeed is Indeed job postings
	PlatformIndeed Platform = "indeed"
	// PlatformICIMS is the iCIMS ATS platform
	PlatformICIMS Platform = "icims"
	// PlatformTaleo is the Oracle Taleo ATS platform
	PlatformTaleo Platform = "taleo"
	// PlatformBambooHR is the BambooHR ATS platform
	PlatformBambooHR Platform = "bamboohr"
	// PlatformSmartRecruiters is the SmartRecruiters ATS platform
	PlatformSmartRecruiters Platform = "smartrecruiters"
	// PlatformUnknown is an unrecognized host
	PlatformUnknown Platform = "unknown"
)

// DetectPlatform identifies the hosting platform from a page URL.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformUnknown
	}

	host := strings.ToLower(parsed.Host)
	path := strings.ToLower(parsed.Path)

	if strings.Contains(host, "greenhouse.io") {
		return PlatformGreenhouse
	}
	if strings.Contains(host, "lever.co") {
		return PlatformLever
	}
	if strings.Contains(host, "myworkdayjobs.com") ||
		strings.Contains(host, "workday.com") {
		return PlatformWorkday
	}
	if strings.Contains(host, "ashbyhq.com") {
		return PlatformAshby
	}
	// LinkedIn hosts far more than jobs; require the jobs path.
	if strings.Contains(host, "linkedin.com") && strings.Contains(path, "/jobs") {
		return PlatformLinkedIn
	}
	if strings.Contains(host, "indeed.com") {
		return PlatformIndeed
	}
	if strings.Contains(host, "icims.com") {
		return PlatformICIMS
	}
	if strings.Contains(host, "taleo.net") {
		return PlatformTaleo
	}
	if strings.Contains(host, "bamboohr.com") {
		return PlatformBambooHR
	}
	if strings.Contains(host, "smartrecruiters.com") {
		return PlatformSmartRecruiters
	}

	return PlatformUnknown
}

// PlatformSelectors returns description selectors tried first for a detected
// platform, most specific first.
func PlatformSelectors(platform Platform) []string {
	switch platform {
	case PlatformGreenhouse:
		return []string{
			"#content",                  // Classic hosted boards
			".job__description.body",    // Embedded boards
			".job__description",         // Fallback
			".job-post-container",       // Container level
			"#app_body",                 // Legacy layout
		}
	case PlatformLever:
		return []string{
			".posting-description",
			"[data-qa='job-description']",
			".section-wrapper.page-full-width",
			".posting-page",
		}
	case PlatformWorkday:
		return []string{
			"[data-automation-id='jobPostingDescription']",
			"[data-automation-id='jobDescription']",
			".gwt-HTML",
		}
	case PlatformAshby:
		return []string{
			"._descriptionText",
			"[class*='_description']",
			".ashby-job-posting-brief",
		}
	case PlatformLinkedIn:
		return []string{
			".description__text",
			".show-more-less-html__markup",
			".jobs-description__content",
		}
	case PlatformIndeed:
		return []string{
			"#jobDescriptionText",
			".jobsearch-jobDescriptionText",
			".jobsearch-JobComponent-description",
		}
	case PlatformICIMS:
		return []string{
			".iCIMS_JobContent",
			".iCIMS_Expandable_Container",
			".iCIMS_InfoMsg_Job",
		}
	case PlatformTaleo:
		return []string{
			"#requisitionDescriptionInterface",
			".mastercontentpanel3",
			".editablesection",
		}
	case PlatformBambooHR:
		return []string{
			".BambooHR-ATS-Description",
			"#jobDescription",
			".js-jobs-description",
		}
	case PlatformSmartRecruiters:
		return []string{
			".job-sections",
			"[itemprop='description']",
			".jobad-main",
		}
	default:
		return nil
	}
}

// GenericSelectors returns the fallback description selectors tried on every
// platform after the specific list.
func GenericSelectors() []string {
	return []string{
		".job-description",
		"#job-description",
		"#jobDescriptionText",
		"[class*='job-description']",
		"[class*='jobDescription']",
		"[itemprop='description']",
		".description",
		"#description",
		"article",
		"main",
	}
}
