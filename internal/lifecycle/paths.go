package lifecycle

import "fmt"

// Bucket layout. Raw dataset objects live under input_data/{class}/; all
// per-job data lives under jobs/{job_name}/.
const inputDataPrefix = "input_data/"

func classPrefix(class string) string {
	return inputDataPrefix + class + "/"
}

func preprocessedDataPrefix(jobName string) string {
	return fmt.Sprintf("jobs/%s/preprocessed_data/", jobName)
}

func preprocessedCSVKey(jobName string) string {
	return fmt.Sprintf("jobs/%s/preprocessed_data/%s_augmented_data.csv", jobName, jobName)
}

func trainArtifactsPrefix(jobName string) string {
	return fmt.Sprintf("jobs/%s/train_artifacts/", jobName)
}

func modelArtifactKey(jobName string) string {
	return trainArtifactsPrefix(jobName) + "model.tar.gz"
}

var plotKinds = []string{"accuracy", "loss", "confusion_matrix"}
var plotThemes = []string{"light", "dark"}

// plotKeys returns the six training plot image keys, keyed by
// "{kind}_{theme}".
func plotKeys(jobName string) map[string]string {
	keys := make(map[string]string, len(plotKinds)*len(plotThemes))
	for _, kind := range plotKinds {
		for _, theme := range plotThemes {
			name := kind + "_" + theme
			keys[name] = fmt.Sprintf("%splots/%s.png", trainArtifactsPrefix(jobName), name)
		}
	}
	return keys
}

func s3URI(bucket, key string) string {
	return fmt.Sprintf("s3://%s/%s", bucket, key)
}
