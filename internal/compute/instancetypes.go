package compute

// validInstanceTypes is the closed set of instance types a job may request
// for preprocessing, training or deployment.
var validInstanceTypes = map[string]bool{
	"ml.t3.medium":    true,
	"ml.t3.large":     true,
	"ml.t3.xlarge":    true,
	"ml.t3.2xlarge":   true,
	"ml.m4.xlarge":    true,
	"ml.m4.2xlarge":   true,
	"ml.m4.4xlarge":   true,
	"ml.m5.large":     true,
	"ml.m5.xlarge":    true,
	"ml.m5.2xlarge":   true,
	"ml.m5.4xlarge":   true,
	"ml.m5.12xlarge":  true,
	"ml.m5.24xlarge":  true,
	"ml.c5.xlarge":    true,
	"ml.c5.2xlarge":   true,
	"ml.c5.4xlarge":   true,
	"ml.c5.9xlarge":   true,
	"ml.c5.18xlarge":  true,
	"ml.r5.large":     true,
	"ml.r5.xlarge":    true,
	"ml.r5.2xlarge":   true,
	"ml.r5.4xlarge":   true,
	"ml.r5d.large":    true,
	"ml.r5d.xlarge":   true,
	"ml.r5d.2xlarge":  true,
	"ml.r5d.4xlarge":  true,
	"ml.g4dn.xlarge":  true,
	"ml.g4dn.2xlarge": true,
	"ml.g4dn.4xlarge": true,
	"ml.g4dn.8xlarge": true,
	"ml.g5.xlarge":    true,
	"ml.g5.2xlarge":   true,
	"ml.g5.4xlarge":   true,
	"ml.p2.xlarge":    true,
	"ml.p2.8xlarge":   true,
	"ml.p3.2xlarge":   true,
	"ml.p3.8xlarge":   true,
}

// ValidInstanceType reports whether t is an allowed instance type.
func ValidInstanceType(t string) bool {
	return validInstanceTypes[t]
}

// ValidInstanceCount reports whether n is an allowed instance count.
func ValidInstanceCount(n int) bool {
	return n >= 1 && n <= 5
}
