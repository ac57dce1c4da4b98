package driver

// IndexQueries are run by BuildIndices.
var IndexQueries = []string{
	"CREATE INDEX ON :Person(id);",
}

const (
	// EgoGraphQuery takes the traversal depth as a format verb because
	// Cypher does not accept parameters in variable-length bounds.
	EgoGraphQuery = `
		MATCH p = (c:Person {id: $center})-[:KNOWS*1..%d]-(:Person)
		WHERE all(r IN relationships(p) WHERE r.status = 'active')
		UNWIND relationships(p) AS r
		WITH DISTINCT r
		RETURN startNode(r).id AS source, endNode(r).id AS target
		ORDER BY source, target
	`

	GetProfilesQuery = `
		MATCH (p:Person)
		WHERE p.id IN $ids
		RETURN p.id AS id,
			coalesce(p.name, '') AS name,
			coalesce(p.intro, '') AS intro,
			coalesce(p.gender, '') AS gender,
			coalesce(p.age_band, '') AS age_band,
			coalesce(p.city, '') AS city,
			coalesce(p.manner_temperature, 36.5) AS manner_temperature
		ORDER BY id
	`

	SavePersonQuery = `
		MERGE (p:Person {id: $id})
		SET p.name = $name,
			p.intro = $intro,
			p.gender = $gender,
			p.age_band = $age_band,
			p.city = $city,
			p.manner_temperature = $manner_temperature
		RETURN p.id AS id
	`

	SaveKnowsQuery = `
		MATCH (a:Person {id: $source})
		MATCH (b:Person {id: $target})
		MERGE (a)-[r:KNOWS]->(b)
		SET r.status = $status
		RETURN r.status AS status
	`

	ClearPeopleQuery = `
		MATCH (p:Person)
		DETACH DELETE p
	`
)
