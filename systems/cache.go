package systems

import "github.com/pthm-cable/blobs/config"

// Cached config values for hot paths, read-only after InitCache.
var (
	cachedSensorRadiusSq float32
	cachedSensorRadius   float32
	cachedOscillatorFreq float32

	cachedBaseDrain       float32
	cachedMoveCostDivisor float32
	cachedAgeStep         float32

	cachedBrownianScale float32
	cachedDrag          float32

	cachedEatRadiusSq    float32
	cachedDriveThreshold float32
	cachedStarveEnergy   float32
)

// InitCache copies config values used per entity per tick into package variables.
// Must be called after config.Init and before the first tick.
func InitCache() {
	cfg := config.Cfg()

	cachedSensorRadiusSq = float32(cfg.Sensors.RadiusSq)
	cachedSensorRadius = cfg.Derived.SensorRadius
	cachedOscillatorFreq = float32(cfg.Sensors.OscillatorFreq)

	cachedBaseDrain = float32(cfg.Energy.BaseDrain)
	cachedMoveCostDivisor = float32(cfg.Energy.MoveCostDivisor)
	cachedAgeStep = float32(cfg.Energy.AgeStep)

	cachedBrownianScale = float32(cfg.Physics.BrownianScale)
	cachedDrag = float32(cfg.Physics.Drag)

	cachedEatRadiusSq = float32(cfg.Food.EatRadiusSq)
	cachedDriveThreshold = float32(cfg.Reproduction.DriveThreshold)
	cachedStarveEnergy = float32(cfg.Reproduction.StarveEnergy)
}
