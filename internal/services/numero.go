package services

import (
	"fmt"
	"math/rand"
	"time"
)

// GerarNumeroOS gera o número humano no formato OS-AAAAMM-NNNNN
func GerarNumeroOS(agora time.Time) string {
	return fmt.Sprintf("OS-%s-%05d", agora.UTC().Format("200601"), rand.Intn(99999)+1)
}
