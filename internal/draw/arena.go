package draw

import (
	"github.com/tomz197/capylabs/internal/config"
	"github.com/tomz197/capylabs/internal/physics"
	"github.com/tomz197/capylabs/internal/scene"
)

// Arena draws the spawn ring, the player turret facing heading, and every
// scene entity.
func Arena(c *Canvas, entities []scene.Entity, heading float64) {
	c.Ring(config.EnemySpawnRadius, 48)
	player(c, heading)

	for _, e := range entities {
		switch e.Template {
		case scene.TemplateEnemy:
			c.Disc(e.Position, config.EnemyRadius)
		case scene.TemplateProjectile, scene.TemplateParticle:
			c.Plot(e.Position)
		case scene.TemplateMuzzleFlash:
			const r = 0.25
			c.Line(e.Position.Add(physics.Vec3{X: -r}), e.Position.Add(physics.Vec3{X: r}))
			c.Line(e.Position.Add(physics.Vec3{Z: -r}), e.Position.Add(physics.Vec3{Z: r}))
		}
	}
}

// player draws a triangle pointing along heading.
func player(c *Canvas, heading float64) {
	const size = 0.5
	const wing = 2.5 // radians from the nose
	c.Polygon([]physics.Vec3{
		physics.Heading(heading).Scale(size),
		physics.Heading(heading + wing).Scale(size * 0.7),
		physics.Heading(heading - wing).Scale(size * 0.7),
	})
}
